package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/amterp/wallet/internal/model"
	"github.com/amterp/wallet/internal/store"
	"github.com/amterp/wallet/internal/version"
	"github.com/amterp/wallet/internal/wallet"
)

// IssueSeverity indicates how critical an issue is.
type IssueSeverity string

const (
	SeverityError   IssueSeverity = "error"
	SeverityWarning IssueSeverity = "warning"
)

// Issue codes for diagnostic results.
const (
	// Priority 1: Stored data integrity (errors)
	CodeUnreadableCards = "UNREADABLE_CARDS"
	CodeMalformedCards  = "MALFORMED_CARDS"

	// Priority 2: Card records (warnings)
	CodeDuplicateCardID  = "DUPLICATE_CARD_ID"
	CodeUntokenizedCard  = "UNTOKENIZED_CARD"
	CodeInvalidCardField = "INVALID_CARD_FIELD"
	CodeOffPaletteColor  = "OFF_PALETTE_COLOR"

	// Priority 3: Global config (warnings)
	CodeMalformedGlobalConfig = "MALFORMED_GLOBAL_CONFIG"
	CodeGlobalSchemaOutdated  = "GLOBAL_SCHEMA_OUTDATED"
	CodeMissingCredentials    = "MISSING_CREDENTIALS"
)

// CorruptBackupKey receives the old payload when malformed cards are reset.
const CorruptBackupKey = "cards-corrupt"

// Issue represents a single diagnostic finding.
type Issue struct {
	Severity  IssueSeverity `json:"severity"`
	Code      string        `json:"code"`
	CardID    string        `json:"card_id,omitempty"`
	Message   string        `json:"message"`
	Fixable   bool          `json:"fixable"`
	FixAction string        `json:"fix_action,omitempty"`
	FixError  string        `json:"fix_error,omitempty"` // Populated if fix was attempted but failed
}

// ReportSummary summarizes the diagnostic results.
type ReportSummary struct {
	Cards     int `json:"cards"`
	Errors    int `json:"errors"`
	Warnings  int `json:"warnings"`
	Fixed     int `json:"fixed"`
	FixFailed int `json:"fix_failed,omitempty"`
}

// DiagnosticReport contains all diagnostic results.
type DiagnosticReport struct {
	Issues  []Issue       `json:"issues"`
	Summary ReportSummary `json:"summary"`
}

// HasErrors returns true if there are any error-level issues.
func (r *DiagnosticReport) HasErrors() bool {
	return r.Summary.Errors > 0
}

// DoctorService checks the stored cards and the config for problems.
// Diagnosis reads the raw payload from kv. Fixes to the card list go through
// cards, which must be backed by the same kv.
type DoctorService struct {
	kv         store.KVStore
	cards      *wallet.Store
	configPath string
	gateway    model.GatewayConfig
}

// NewDoctorService creates a new diagnostic service. gw is the resolved
// gateway config used for the credentials check.
func NewDoctorService(kv store.KVStore, cards *wallet.Store, configPath string, gw model.GatewayConfig) *DoctorService {
	return &DoctorService{kv: kv, cards: cards, configPath: configPath, gateway: gw}
}

// Diagnose runs every check and returns the findings.
func (s *DoctorService) Diagnose(ctx context.Context) (*DiagnosticReport, error) {
	report := &DiagnosticReport{Issues: []Issue{}}

	s.checkCards(ctx, report)
	s.checkGlobalConfig(report)
	s.checkCredentials(report)

	tally(report)
	return report, nil
}

// Fix attempts every fixable issue and returns the remaining ones.
func (s *DoctorService) Fix(ctx context.Context, report *DiagnosticReport) (*DiagnosticReport, error) {
	fixed := 0
	fixFailed := 0
	remaining := []Issue{}

	needsRewrite := false
	for _, issue := range report.Issues {
		if !issue.Fixable {
			remaining = append(remaining, issue)
			continue
		}

		var err error
		switch issue.Code {
		case CodeMalformedCards:
			err = s.fixMalformedCards(ctx)
		case CodeDuplicateCardID, CodeUntokenizedCard:
			// Both are repaired by one rewrite below
			needsRewrite = true
			fixed++
			continue
		default:
			remaining = append(remaining, issue)
			continue
		}

		if err != nil {
			// If fix failed, keep the issue with error recorded
			issue.FixError = err.Error()
			remaining = append(remaining, issue)
			fixFailed++
		} else {
			fixed++
		}
	}

	if needsRewrite {
		if err := s.rewriteCards(ctx); err != nil {
			return nil, err
		}
	}

	newReport := &DiagnosticReport{
		Issues: remaining,
		Summary: ReportSummary{
			Cards:     report.Summary.Cards,
			Fixed:     fixed,
			FixFailed: fixFailed,
		},
	}
	tally(newReport)
	return newReport, nil
}

func tally(report *DiagnosticReport) {
	report.Summary.Errors = 0
	report.Summary.Warnings = 0
	for _, issue := range report.Issues {
		if issue.Severity == SeverityError {
			report.Summary.Errors++
		} else {
			report.Summary.Warnings++
		}
	}
}

func (s *DoctorService) checkCards(ctx context.Context, report *DiagnosticReport) {
	raw, ok, err := s.kv.Get(ctx, wallet.CardsKey)
	if err != nil {
		report.Issues = append(report.Issues, Issue{
			Severity: SeverityError,
			Code:     CodeUnreadableCards,
			Message:  fmt.Sprintf("Cannot read stored cards: %v", err),
		})
		return
	}
	if !ok {
		return // Nothing stored yet is fine
	}

	var cards []model.Card
	if err := json.Unmarshal([]byte(raw), &cards); err != nil {
		report.Issues = append(report.Issues, Issue{
			Severity:  SeverityError,
			Code:      CodeMalformedCards,
			Message:   fmt.Sprintf("Stored cards are not a valid card list: %v", err),
			Fixable:   true,
			FixAction: fmt.Sprintf("Back up the payload under %q and reset to an empty list", CorruptBackupKey),
		})
		return
	}
	report.Summary.Cards = len(cards)

	seen := make(map[string]bool)
	for _, c := range cards {
		if c.ID == "" {
			report.Issues = append(report.Issues, Issue{
				Severity:  SeverityWarning,
				Code:      CodeUntokenizedCard,
				Message:   fmt.Sprintf("Card ending %s has no token id", c.LastFour()),
				Fixable:   true,
				FixAction: "Remove the card",
			})
			continue
		}
		if seen[c.ID] {
			report.Issues = append(report.Issues, Issue{
				Severity:  SeverityWarning,
				Code:      CodeDuplicateCardID,
				CardID:    c.ID,
				Message:   fmt.Sprintf("Card id %s appears more than once", c.ID),
				Fixable:   true,
				FixAction: "Keep the first occurrence",
			})
		}
		seen[c.ID] = true

		if msg := fieldProblem(c); msg != "" {
			report.Issues = append(report.Issues, Issue{
				Severity: SeverityWarning,
				Code:     CodeInvalidCardField,
				CardID:   c.ID,
				Message:  msg,
			})
		}
		if !model.IsPaletteColor(c.CardColor) {
			report.Issues = append(report.Issues, Issue{
				Severity:  SeverityWarning,
				Code:      CodeOffPaletteColor,
				CardID:    c.ID,
				Message:   fmt.Sprintf("Card color %q is not in the palette", c.CardColor),
				FixAction: "Remove the card and add it again with a palette color",
			})
		}
	}
}

// fieldProblem reports the first field that would not survive input shaping.
func fieldProblem(c model.Card) string {
	switch {
	case ShapeNumber(c.Number) != c.Number:
		return "Card number must be at most 16 digits"
	case ShapeExpiry(c.ExpiryMonth) != c.ExpiryMonth:
		return "Expiry month must be at most 2 digits"
	case ShapeExpiry(c.ExpiryYear) != c.ExpiryYear:
		return "Expiry year must be at most 2 digits"
	case ShapeCVC(c.CVC) != c.CVC:
		return "CVC must be at most 3 digits"
	}
	return ""
}

func (s *DoctorService) checkGlobalConfig(report *DiagnosticReport) {
	if s.configPath == "" {
		return
	}

	data, err := os.ReadFile(s.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return // No global config is fine
		}
		report.Issues = append(report.Issues, Issue{
			Severity: SeverityWarning,
			Code:     CodeMalformedGlobalConfig,
			Message:  fmt.Sprintf("Cannot read global config: %v", err),
		})
		return
	}

	var raw map[string]any
	if _, err := toml.Decode(string(data), &raw); err != nil {
		report.Issues = append(report.Issues, Issue{
			Severity: SeverityWarning,
			Code:     CodeMalformedGlobalConfig,
			Message:  fmt.Sprintf("Invalid TOML in global config: %v", err),
		})
		return
	}

	schema, _ := raw["wallet_schema"].(string)
	if schema != version.CurrentGlobalSchema() {
		found := schema
		if found == "" {
			found = "no schema"
		}
		report.Issues = append(report.Issues, Issue{
			Severity:  SeverityWarning,
			Code:      CodeGlobalSchemaOutdated,
			Message:   fmt.Sprintf("Global config has %s, current is %s", found, version.CurrentGlobalSchema()),
			FixAction: "Run 'wallet init --force' to rewrite it",
		})
	}
}

func (s *DoctorService) checkCredentials(report *DiagnosticReport) {
	if s.gateway.HasCredentials() {
		return
	}
	report.Issues = append(report.Issues, Issue{
		Severity:  SeverityWarning,
		Code:      CodeMissingCredentials,
		Message:   "Gateway keys are not set; adding and charging cards will fail",
		FixAction: "Set WALLET_PUBLIC_KEY and WALLET_SECRET_KEY, or the [gateway] section of the config",
	})
}

func (s *DoctorService) fixMalformedCards(ctx context.Context) error {
	raw, ok, err := s.kv.Get(ctx, wallet.CardsKey)
	if err != nil {
		return err
	}
	if ok {
		if err := s.kv.Set(ctx, CorruptBackupKey, raw); err != nil {
			return fmt.Errorf("failed to back up cards: %w", err)
		}
	}
	return s.cards.Rewrite(ctx, func([]model.Card) []model.Card {
		return []model.Card{}
	})
}

// rewriteCards drops untokenized cards and repeated ids, keeping order.
func (s *DoctorService) rewriteCards(ctx context.Context) error {
	if err := s.cards.Load(ctx); err != nil {
		return err
	}
	return s.cards.Rewrite(ctx, func(cards []model.Card) []model.Card {
		seen := make(map[string]bool)
		kept := []model.Card{}
		for _, c := range cards {
			if c.ID == "" || seen[c.ID] {
				continue
			}
			seen[c.ID] = true
			kept = append(kept, c)
		}
		return kept
	})
}
