package services

import (
	"regexp"

	"github.com/sirupsen/logrus"

	"github.com/lucasaraujosgc-hue/crm/internal/utils"
)

// inscricaoPattern matches the public display format, e.g. "123.456.789 -"
var inscricaoPattern = regexp.MustCompile(`(\d{1,3}\.\d{1,3}\.\d{1,3})\s*-`)

// IdentifierScanner finds state registrations in document text
type IdentifierScanner struct {
	reader DocumentReader
	logger *logrus.Logger
}

// NewIdentifierScanner creates a scanner reading documents with reader
func NewIdentifierScanner(reader DocumentReader, logger *logrus.Logger) *IdentifierScanner {
	return &IdentifierScanner{
		reader: reader,
		logger: logger,
	}
}

// ScanFile reads the document at path and returns its identifiers.
// A document that cannot be read yields no identifiers.
func (s *IdentifierScanner) ScanFile(path string) []string {
	pages, err := s.reader.ReadPages(path)
	if err != nil {
		s.logger.WithError(err).WithField("path", path).Warn("Failed to read document, treating as empty")
		return []string{}
	}

	found := ScanPages(pages)
	s.logger.WithFields(logrus.Fields{
		"path":        path,
		"pages":       len(pages),
		"identifiers": len(found),
	}).Info("Document scanned")
	return found
}

// ScanPages returns the unique nine-digit identifiers in first-seen order
func ScanPages(pages []string) []string {
	seen := make(map[string]struct{})
	found := make([]string, 0)

	for _, page := range pages {
		for _, match := range inscricaoPattern.FindAllStringSubmatch(page, -1) {
			ie := utils.CleanInscricao(match[1])
			if !utils.IsValidInscricao(ie) {
				continue
			}
			if _, dup := seen[ie]; dup {
				continue
			}
			seen[ie] = struct{}{}
			found = append(found, ie)
		}
	}

	return found
}
