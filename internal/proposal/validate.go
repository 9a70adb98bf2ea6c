// Package proposal turns raw model output into a validated credit proposal.
package proposal

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/ArthurGuilherms/Projeto-Banese-Labs/pkg/models"
	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// ErrMalformedProposal is returned for any output that cannot be turned into
// a complete, well-typed proposal. The wrapped detail is for logs only.
var ErrMalformedProposal = errors.New("malformed proposal")

// UserMessage is the only text callers may show when validation fails.
const UserMessage = "could not produce a credit proposal"

const (
	keyAmount        = "valor_sugerido"
	keyRate          = "taxa_juros"
	keyTerm          = "prazo_pagamento"
	keyJustification = "justificativa"
)

// ExtractJSON strips code fences and surrounding prose from raw, returning
// the candidate JSON object text.
func ExtractJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			s = s[nl+1:]
		} else {
			s = strings.TrimPrefix(s, "```")
			if len(s) >= 4 && strings.EqualFold(s[:4], "json") {
				s = s[4:]
			}
		}
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSpace(strings.TrimSuffix(s, "```"))

	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start >= 0 && end > start {
		s = s[start : end+1]
	}
	return s
}

// Parse extracts, decodes and shape-checks a proposal. Syntax errors are
// retried through a lenient Hjson parse and then a JSON repairer whose
// numbers are mapped back to the original literals. Shape errors are final.
func Parse(raw string) (*models.CreditProposal, error) {
	body := ExtractJSON(raw)
	if body == "" {
		return nil, fmt.Errorf("%w: empty response", ErrMalformedProposal)
	}

	obj, err := decode(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedProposal, err)
	}

	p, err := shape(obj)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedProposal, err)
	}
	return p, nil
}

func decode(body string) (map[string]any, error) {
	obj, strictErr := decodeStrict(body)
	if strictErr == nil {
		return obj, nil
	}
	var syntax *json.SyntaxError
	if !errors.As(strictErr, &syntax) && !errors.Is(strictErr, io.ErrUnexpectedEOF) && !errors.Is(strictErr, errTrailingData) {
		return nil, strictErr
	}

	var lenient any
	opts := hjson.DefaultDecoderOptions()
	opts.UseJSONNumber = true
	if err := hjson.UnmarshalWithOptions([]byte(body), &lenient, opts); err == nil {
		if obj, ok := lenient.(map[string]any); ok {
			return obj, nil
		}
	}

	repaired, err := jsonrepair.RepairJSON(body)
	if err != nil {
		return nil, fmt.Errorf("decoding: %v", strictErr)
	}
	obj, err = decodeStrict(repaired)
	if err != nil {
		return nil, fmt.Errorf("decoding: %v", strictErr)
	}
	if err := restoreNumbers(obj, body); err != nil {
		return nil, fmt.Errorf("decoding: %w", err)
	}
	return obj, nil
}

var numberLiteral = regexp.MustCompile(`-?\d+(?:\.\d+)?(?:[eE][+-]?\d+)?`)

// restoreNumbers replaces every number in a repaired object with the literal
// it came from. The repairer parses fractions at float32 precision, so a
// repaired value is matched to the original literal that rounds to it.
func restoreNumbers(obj map[string]any, original string) error {
	literals := numberLiteral.FindAllString(original, -1)
	for k, v := range obj {
		n, ok := v.(json.Number)
		if !ok {
			continue
		}
		lit, ok := matchLiteral(n, literals)
		if !ok {
			return fmt.Errorf("%s: repaired value %s has no source literal", k, n)
		}
		obj[k] = json.Number(lit)
	}
	return nil
}

func matchLiteral(n json.Number, literals []string) (string, bool) {
	repaired, err := n.Float64()
	if err != nil {
		return "", false
	}
	for _, lit := range literals {
		if f, err := strconv.ParseFloat(lit, 64); err == nil && f == repaired {
			return lit, true
		}
	}
	for _, lit := range literals {
		if f, err := strconv.ParseFloat(lit, 64); err == nil && float32(f) == float32(repaired) {
			return lit, true
		}
	}
	return "", false
}

var errTrailingData = errors.New("trailing data after object")

func decodeStrict(body string) (map[string]any, error) {
	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errTrailingData
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, errors.New("response is not an object")
	}
	return obj, nil
}

func shape(obj map[string]any) (*models.CreditProposal, error) {
	for _, k := range []string{keyAmount, keyRate, keyTerm, keyJustification} {
		if _, ok := obj[k]; !ok {
			return nil, fmt.Errorf("missing key %q", k)
		}
	}

	amount, err := wholeNumber(obj[keyAmount], math.MaxInt64)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", keyAmount, err)
	}
	term, err := wholeNumber(obj[keyTerm], math.MaxInt32)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", keyTerm, err)
	}
	rate, err := number(obj[keyRate])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", keyRate, err)
	}
	if rate < 0 || rate >= 100 {
		return nil, fmt.Errorf("%s: %v outside [0, 100)", keyRate, rate)
	}
	justification, ok := obj[keyJustification].(string)
	if !ok {
		return nil, fmt.Errorf("%s: not a string", keyJustification)
	}

	return &models.CreditProposal{
		SuggestedAmount:     amount,
		MonthlyInterestRate: rate,
		TermMonths:          int(term),
		Justification:       justification,
	}, nil
}

func number(v any) (float64, error) {
	switch n := v.(type) {
	case json.Number:
		return n.Float64()
	case float64:
		return n, nil
	default:
		return 0, fmt.Errorf("not a number: %T", v)
	}
}

func wholeNumber(v any, max int64) (int64, error) {
	if n, ok := v.(json.Number); ok {
		if i, err := n.Int64(); err == nil {
			if i < 0 || i > max {
				return 0, fmt.Errorf("%d out of range", i)
			}
			return i, nil
		}
	}
	f, err := number(v)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("%v is not a whole number", f)
	}
	if f < 0 || f >= 1<<63 || f > float64(max) {
		return 0, fmt.Errorf("%v out of range", f)
	}
	return int64(f), nil
}
