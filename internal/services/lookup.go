package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/lucasaraujosgc-hue/crm/internal/config"
)

// LookupProtocol drives the registry query form for one identifier
type LookupProtocol struct {
	config config.RegistryConfig
	logger *logrus.Logger

	input  Locator
	submit Locator
}

// NewLookupProtocol creates a lookup protocol for the configured registry
func NewLookupProtocol(cfg config.RegistryConfig, logger *logrus.Logger) *LookupProtocol {
	return &LookupProtocol{
		config: cfg,
		logger: logger,
		input:  CSS(cfg.InputSelector),
		submit: XPath(cfg.SubmitXPath),
	}
}

// Lookup submits inscricao and reports whether the results page was reached.
// Failures of any step, including panics in the session, yield false.
func (p *LookupProtocol) Lookup(ctx context.Context, session Session, inscricao string) (ok bool) {
	log := p.logger.WithField("inscricao_estadual", inscricao)

	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Warn("Lookup aborted")
			ok = false
		}
	}()

	if err := p.submitQuery(ctx, session, inscricao, log); err != nil {
		log.WithError(err).Warn("Lookup failed")
		return false
	}

	log.Debug("Results page reached")
	return true
}

func (p *LookupProtocol) submitQuery(ctx context.Context, session Session, inscricao string, log *logrus.Entry) error {
	log.Debug("Opening query form")
	if err := session.Navigate(ctx, p.config.QueryURL); err != nil {
		return fmt.Errorf("navigate: %w", err)
	}

	if err := session.WaitFor(ctx, Present(p.input), p.config.LookupTimeout); err != nil {
		return err
	}

	log.Debug("Filling identifier")
	if err := session.Fill(ctx, p.input, inscricao); err != nil {
		return fmt.Errorf("fill: %w", err)
	}

	if err := session.WaitFor(ctx, Clickable(p.submit), p.config.LookupTimeout); err != nil {
		return err
	}

	log.Debug("Submitting query")
	if err := session.Click(ctx, p.submit); err != nil {
		return fmt.Errorf("click: %w", err)
	}

	return session.WaitFor(ctx, URLHas(p.config.ResultFragment), p.config.LookupTimeout)
}
