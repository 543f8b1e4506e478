package v1handler

import (
	"io"
	"linkexpander/pkg/domain"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

// maxRequestBodyBytes bounds the size of a decoded request body.
const maxRequestBodyBytes = 1 << 20

// ExpandRequest is the body of POST /v1/expand.
type ExpandRequest struct {
	// URL is empty when the field is absent or null.
	URL string
}

// Decode decodes ExpandRequest from json. Unknown fields are skipped.
func (s *ExpandRequest) Decode(d *jx.Decoder) error {
	if s == nil {
		return errors.New("invalid: unable to decode ExpandRequest to nil")
	}

	if err := d.ObjBytes(func(d *jx.Decoder, k []byte) error {
		switch string(k) {
		case "url":
			if d.Next() == jx.Null {
				return d.Null() //nolint: wrapcheck
			}
			v, err := d.Str()
			if err != nil {
				return errors.Wrap(err, "decode field \"url\"")
			}
			s.URL = v

			return nil
		default:
			return d.Skip() //nolint: wrapcheck
		}
	}); err != nil {
		return errors.Wrap(err, "decode ExpandRequest")
	}

	return nil
}

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Error string
}

// Encode implements json.Marshaler.
func (s *ErrorResponse) Encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("error")
	e.Str(s.Error)
	e.ObjEnd()
}

// ExpansionResult is the body of a successful POST /v1/expand.
type ExpansionResult domain.ExpansionResult

// Encode implements json.Marshaler.
func (s *ExpansionResult) Encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("originalUrl")
	e.Str(s.OriginalURL)
	e.FieldStart("expandedUrl")
	e.Str(s.ExpandedURL)
	e.FieldStart("title")
	e.Str(s.Title)
	e.FieldStart("description")
	e.Str(s.Description)
	e.FieldStart("trustScore")
	e.Int(s.TrustScore)
	e.FieldStart("isSafe")
	e.Bool(s.IsSafe)
	e.ObjEnd()
}

// HistoryList is the body of GET /v1/history.
type HistoryList []domain.HistoryEntry

// Encode implements json.Marshaler. A nil list is encoded as [].
func (s HistoryList) Encode(e *jx.Encoder) {
	e.ArrStart()
	for _, entry := range s {
		e.ObjStart()
		e.FieldStart("original")
		e.Str(entry.Original)
		e.FieldStart("expanded")
		e.Str(entry.Expanded)
		e.FieldStart("date")
		e.Str(entry.Date)
		e.FieldStart("safe")
		e.Bool(entry.Safe)
		e.ObjEnd()
	}
	e.ArrEnd()
}

type encoder interface {
	Encode(e *jx.Encoder)
}

func decodeRequest(r *http.Request, v interface{ Decode(d *jx.Decoder) error }) error {
	b, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodyBytes))
	if err != nil {
		return errors.Wrap(err, "read request body")
	}
	if len(b) == 0 {
		return errors.New("empty request body")
	}

	return v.Decode(jx.DecodeBytes(b)) //nolint: wrapcheck
}

func encodeResponse(w http.ResponseWriter, status int, v encoder) {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)

	v.Encode(e)

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}
