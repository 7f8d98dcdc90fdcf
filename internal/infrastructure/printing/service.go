package printing

import (
	"context"
	"embed"
	"fmt"
	"os"
	"path/filepath"

	appledger "github.com/finbooks/backend/internal/application/ledger"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	receiptTemplateName  = "payment_receipt"
	documentTemplateName = "document"
)

// Service renders payment receipts and documents to PDF. Templates come
// from the embedded set unless a template directory override is given.
type Service struct {
	engine      *TemplateEngine
	renderer    PDFRenderer
	templateDir string
	footerNote  string
	logger      *zap.Logger
}

var _ appledger.LedgerPrinter = (*Service)(nil)

// ServiceOption configures a Service
type ServiceOption func(*Service)

// WithTemplateDir overrides the embedded templates with files from dir.
// Files are looked up as <name>.html and fall back to the embedded copy
// when missing.
func WithTemplateDir(dir string) ServiceOption {
	return func(s *Service) {
		s.templateDir = dir
	}
}

// WithFooterNote sets the footer text stamped on every printout
func WithFooterNote(note string) ServiceOption {
	return func(s *Service) {
		s.footerNote = note
	}
}

// WithServiceLogger sets the logger
func WithServiceLogger(logger *zap.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates a printing service on top of the given PDF renderer
func NewService(renderer PDFRenderer, opts ...ServiceOption) (*Service, error) {
	if renderer == nil {
		return nil, fmt.Errorf("pdf renderer is required")
	}
	s := &Service{
		engine:   NewTemplateEngine(),
		renderer: renderer,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.templateDir != "" {
		if info, err := os.Stat(s.templateDir); err != nil || !info.IsDir() {
			return nil, fmt.Errorf("template directory %q is not usable", s.templateDir)
		}
	}
	return s, nil
}

// RenderPaymentReceipt renders a payment receipt PDF
func (s *Service) RenderPaymentReceipt(ctx context.Context, data appledger.ReceiptData) ([]byte, error) {
	if data.FooterNote == "" {
		data.FooterNote = s.footerNote
	}
	return s.render(ctx, receiptTemplateName, data)
}

// RenderDocument renders a document PDF
func (s *Service) RenderDocument(ctx context.Context, data appledger.DocumentPrintData) ([]byte, error) {
	if data.FooterNote == "" {
		data.FooterNote = s.footerNote
	}
	return s.render(ctx, documentTemplateName, data)
}

func (s *Service) render(ctx context.Context, name string, data interface{}) ([]byte, error) {
	content, err := s.loadTemplate(name)
	if err != nil {
		return nil, err
	}

	html, err := s.engine.Render(name, content, data)
	if err != nil {
		return nil, err
	}

	result, err := s.renderer.Render(ctx, &RenderRequest{
		HTML:      html,
		PaperSize: PaperSizeA4,
		Margins:   DefaultMargins(),
		Title:     name,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("rendered pdf",
		zap.String("template", name),
		zap.Int("bytes", len(result.PDFData)),
		zap.Duration("duration", result.RenderDuration))
	return result.PDFData, nil
}

// loadTemplate returns the template source for name, preferring the
// override directory when one is configured.
func (s *Service) loadTemplate(name string) (string, error) {
	if s.templateDir != "" {
		path := filepath.Join(s.templateDir, name+".html")
		if data, err := os.ReadFile(path); err == nil {
			return string(data), nil
		}
	}
	data, err := templateFS.ReadFile("templates/" + name + ".html")
	if err != nil {
		return "", fmt.Errorf("load template %q: %w", name, err)
	}
	return string(data), nil
}

// Close releases the underlying renderer
func (s *Service) Close() error {
	return s.renderer.Close()
}
