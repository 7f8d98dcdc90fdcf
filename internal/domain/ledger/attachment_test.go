package ledger

import (
	"strings"
	"testing"

	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAttachment(t *testing.T) *Attachment {
	t.Helper()
	uploader := uuid.New()
	a, err := NewAttachment(
		uuid.New(),
		AttachmentOwnerDocument,
		uuid.New(),
		"invoice-scan.pdf",
		128_000,
		"application/pdf",
		"company/doc/invoice-scan.pdf",
		&uploader,
	)
	require.NoError(t, err)
	return a
}

func TestNewAttachment(t *testing.T) {
	t.Run("creates pending attachment", func(t *testing.T) {
		a := newTestAttachment(t)

		assert.Equal(t, AttachmentStatusPending, a.Status)
		assert.True(t, a.IsPending())
		assert.Equal(t, "invoice-scan.pdf", a.FileName)
		assert.Equal(t, int64(128_000), a.FileSize)
		assert.Len(t, a.GetDomainEvents(), 1)
	})

	t.Run("rejects nil company", func(t *testing.T) {
		_, err := NewAttachment(uuid.Nil, AttachmentOwnerDocument, uuid.New(),
			"a.pdf", 100, "application/pdf", "key/a.pdf", nil)
		assert.Equal(t, shared.CodeInvalidInput, shared.ErrorCode(err))
	})

	t.Run("rejects invalid owner type", func(t *testing.T) {
		_, err := NewAttachment(uuid.New(), AttachmentOwnerType("invoice"), uuid.New(),
			"a.pdf", 100, "application/pdf", "key/a.pdf", nil)
		assert.Equal(t, shared.CodeInvalidInput, shared.ErrorCode(err))
	})

	t.Run("rejects nil owner", func(t *testing.T) {
		_, err := NewAttachment(uuid.New(), AttachmentOwnerPayment, uuid.Nil,
			"a.pdf", 100, "application/pdf", "key/a.pdf", nil)
		assert.Equal(t, shared.CodeInvalidInput, shared.ErrorCode(err))
	})

	t.Run("file name validation", func(t *testing.T) {
		cases := []struct {
			name     string
			fileName string
		}{
			{"empty", ""},
			{"too long", strings.Repeat("a", 256)},
			{"path separator", "../../etc/passwd"},
			{"backslash", "a\\b.pdf"},
			{"control character", "a\x01b.pdf"},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := NewAttachment(uuid.New(), AttachmentOwnerDocument, uuid.New(),
					tc.fileName, 100, "application/pdf", "key/a.pdf", nil)
				assert.Error(t, err)
			})
		}
	})

	t.Run("rejects zero and oversized files", func(t *testing.T) {
		_, err := NewAttachment(uuid.New(), AttachmentOwnerDocument, uuid.New(),
			"a.pdf", 0, "application/pdf", "key/a.pdf", nil)
		assert.Error(t, err)

		_, err = NewAttachment(uuid.New(), AttachmentOwnerDocument, uuid.New(),
			"a.pdf", MaxAttachmentFileSize+1, "application/pdf", "key/a.pdf", nil)
		assert.Error(t, err)
	})

	t.Run("content type must be type/subtype", func(t *testing.T) {
		for _, ct := range []string{"", "pdf", "/pdf", "application/"} {
			_, err := NewAttachment(uuid.New(), AttachmentOwnerDocument, uuid.New(),
				"a.pdf", 100, ct, "key/a.pdf", nil)
			assert.Error(t, err, "content type %q", ct)
		}
	})

	t.Run("storage key validation", func(t *testing.T) {
		for _, key := range []string{"", "/abs/a.pdf", "a/../b.pdf", strings.Repeat("k", 501)} {
			_, err := NewAttachment(uuid.New(), AttachmentOwnerDocument, uuid.New(),
				"a.pdf", 100, "application/pdf", key, nil)
			assert.Error(t, err, "storage key %q", key)
		}
	})
}

func TestAttachment_Confirm(t *testing.T) {
	t.Run("pending to active", func(t *testing.T) {
		a := newTestAttachment(t)
		version := a.Version

		require.NoError(t, a.Confirm())

		assert.True(t, a.IsActive())
		assert.Equal(t, version+1, a.Version)
	})

	t.Run("rejects double confirm", func(t *testing.T) {
		a := newTestAttachment(t)
		require.NoError(t, a.Confirm())

		err := a.Confirm()
		assert.Equal(t, shared.CodeInvalidStatus, shared.ErrorCode(err))
	})

	t.Run("rejects confirm after delete", func(t *testing.T) {
		a := newTestAttachment(t)
		require.NoError(t, a.Delete())

		err := a.Confirm()
		assert.Equal(t, shared.CodeInvalidStatus, shared.ErrorCode(err))
	})
}

func TestAttachment_Delete(t *testing.T) {
	t.Run("soft deletes from any live status", func(t *testing.T) {
		pending := newTestAttachment(t)
		require.NoError(t, pending.Delete())
		assert.True(t, pending.IsDeleted())

		active := newTestAttachment(t)
		require.NoError(t, active.Confirm())
		require.NoError(t, active.Delete())
		assert.True(t, active.IsDeleted())
	})

	t.Run("rejects double delete", func(t *testing.T) {
		a := newTestAttachment(t)
		require.NoError(t, a.Delete())

		err := a.Delete()
		assert.Equal(t, shared.CodeInvalidStatus, shared.ErrorCode(err))
	})
}
