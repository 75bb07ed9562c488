package service

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/boddenberg/cost-dashboard-go/internal/domain"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ParseTopupText parses pasted "Service,Amount,Currency,Date" lines. A first
// line starting with "Service" is treated as a header; blank lines are
// skipped. serviceIDs maps lower-cased service names to ids.
func ParseTopupText(text string, serviceIDs map[string]int64) ([]domain.ImportLine, []domain.TopupInput) {
	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.LazyQuotes = true

	lines := make([]domain.ImportLine, 0)
	valid := make([]domain.TopupInput, 0)
	first := true

	for {
		fields, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if !errors.As(err, &perr) {
				break
			}
			lines = append(lines, domain.ImportLine{Line: perr.StartLine, Errors: []string{"Malformed line"}})
			continue
		}
		lineNo, _ := r.FieldPos(0)
		if first {
			first = false
			if strings.EqualFold(strings.TrimSpace(fields[0]), "service") {
				continue
			}
		}

		line, in := parseTopupLine(lineNo, fields, serviceIDs)
		lines = append(lines, line)
		if line.Valid {
			valid = append(valid, in)
		}
	}
	return lines, valid
}

func parseTopupLine(lineNo int, fields []string, serviceIDs map[string]int64) (domain.ImportLine, domain.TopupInput) {
	line := domain.ImportLine{Line: lineNo}
	if len(fields) != 4 {
		line.Errors = []string{"Expected 4 values: Service,Amount,Currency,Date"}
		return line, domain.TopupInput{}
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	line.ServiceName, line.Amount, line.Currency, line.Date = fields[0], fields[1], fields[2], fields[3]

	in := domain.TopupInput{TopupDate: line.Date, Currency: line.Currency}

	id, ok := serviceIDs[strings.ToLower(line.ServiceName)]
	if !ok {
		line.Errors = append(line.Errors, "Unknown service: "+line.ServiceName)
	}
	in.ServiceID = id
	line.ServiceID = id

	amount, err := decimal.NewFromString(line.Amount)
	badAmount := err != nil
	if badAmount {
		line.Errors = append(line.Errors, "Amount is not a number")
	}
	in.AmountPurchased = amount

	// The remaining checks reuse the top-up rules.
	var invalid *domain.ErrInvalidData
	if err := in.Validate(); errors.As(err, &invalid) {
		for _, fe := range invalid.Errors {
			if fe.Field == "serviceId" || (fe.Field == "amountPurchased" && badAmount) {
				continue
			}
			line.Errors = append(line.Errors, fe.Field+": "+fe.Message)
		}
	}
	line.Currency = in.Currency
	line.Valid = len(line.Errors) == 0
	return line, in
}

// ImportTopupText parses pasted lines and imports the valid ones as one
// batch. When no line is valid nothing is written and the per-line
// problems come back as an *ErrInvalidData.
func (s *CostService) ImportTopupText(ctx context.Context, text string) (*domain.TextImportResult, error) {
	ctx, span := tracer.Start(ctx, "CostService.ImportTopupText")
	defer span.End()

	services, err := s.store.ListServices(ctx)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]int64, len(services))
	for _, svc := range services {
		ids[strings.ToLower(svc.Name)] = svc.ID
	}

	lines, valid := ParseTopupText(text, ids)
	if len(lines) == 0 {
		return nil, &domain.ErrValidation{Field: "text", Message: "No lines to import"}
	}
	if len(valid) == 0 {
		v := &domain.Validation{}
		for _, l := range lines {
			for _, msg := range l.Errors {
				v.Check(false, "line."+strconv.Itoa(l.Line), msg)
			}
		}
		v.Check(false, "text", "No valid lines to import")
		return nil, v.Err()
	}

	res, err := s.BulkCreateTopups(ctx, &domain.BulkTopupRequest{Records: valid})
	if err != nil {
		return nil, err
	}
	s.logger.Info("pasted top-ups imported",
		zap.Int("lines", len(lines)),
		zap.Int("imported", len(valid)),
	)
	return &domain.TextImportResult{Lines: lines, Import: res}, nil
}
