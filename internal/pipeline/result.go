// internal/pipeline/result.go
package pipeline

import (
	"bytes"
	"encoding/json"

	"go.mongodb.org/mongo-driver/bson"
)

// ErrorKind classifies why a page produced no topics.
type ErrorKind string

const (
	KindFetch         ErrorKind = "fetch"
	KindVectorization ErrorKind = "vectorization"
	KindModelFit      ErrorKind = "model_fit"
)

// ErrorInfo is attached to every record that did not complete the pipeline.
type ErrorInfo struct {
	Kind    ErrorKind `json:"kind" bson:"kind"`
	Message string    `json:"message" bson:"message"`
}

// PageResult is the single record emitted per crawled URL.
//
// A success record carries Tokens and Topics (both possibly empty, with Error
// set when vectorization or fitting failed). A fetch failure carries
// FailureReason and Error and has neither tokens nor topics.
type PageResult struct {
	URL           string
	Tokens        []string
	Topics        [][]string
	FailureReason string
	Error         *ErrorInfo
}

// Failed reports whether r is a fetch-failure record.
func (r PageResult) Failed() bool { return r.FailureReason != "" }

// Outcome is "ok" for complete records, otherwise the error kind.
func (r PageResult) Outcome() string {
	if r.Error == nil {
		return "ok"
	}
	return string(r.Error.Kind)
}

// ----- wire shapes -----

type successRecord struct {
	URL    string     `json:"url" bson:"url"`
	Tokens []string   `json:"tokens" bson:"tokens"`
	Topics [][]string `json:"topics" bson:"topics"`
	Error  *ErrorInfo `json:"error,omitempty" bson:"error,omitempty"`
}

type failureRecord struct {
	URL           string     `json:"url" bson:"url"`
	FailureReason string     `json:"failure_reason" bson:"failure_reason"`
	Error         *ErrorInfo `json:"error,omitempty" bson:"error,omitempty"`
}

func (r PageResult) record() any {
	if r.Failed() {
		return failureRecord{URL: r.URL, FailureReason: r.FailureReason, Error: r.Error}
	}
	tokens, topics := r.Tokens, r.Topics
	if tokens == nil {
		tokens = []string{}
	}
	if topics == nil {
		topics = [][]string{}
	}
	return successRecord{URL: r.URL, Tokens: tokens, Topics: topics, Error: r.Error}
}

// MarshalJSON writes the success or failure shape, never both. URLs are
// left unescaped.
func (r PageResult) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(r.record()); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// MarshalBSON mirrors MarshalJSON for MongoDB documents.
func (r PageResult) MarshalBSON() ([]byte, error) { return bson.Marshal(r.record()) }

// UnmarshalJSON accepts either shape.
func (r *PageResult) UnmarshalJSON(b []byte) error {
	var raw struct {
		URL           string     `json:"url"`
		Tokens        []string   `json:"tokens"`
		Topics        [][]string `json:"topics"`
		FailureReason string     `json:"failure_reason"`
		Error         *ErrorInfo `json:"error"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*r = PageResult{URL: raw.URL, Tokens: raw.Tokens, Topics: raw.Topics, FailureReason: raw.FailureReason, Error: raw.Error}
	return nil
}

// ----- assembly -----

// Assemble builds a success record. Nil slices become empty ones.
func Assemble(url string, tokens []string, topics [][]string) PageResult {
	if tokens == nil {
		tokens = []string{}
	}
	if topics == nil {
		topics = [][]string{}
	}
	return PageResult{URL: url, Tokens: tokens, Topics: topics}
}

// AssembleFailure builds a fetch-failure record.
func AssembleFailure(url, reason string) PageResult {
	if reason == "" {
		reason = "unknown error"
	}
	return PageResult{
		URL:           url,
		FailureReason: reason,
		Error:         &ErrorInfo{Kind: KindFetch, Message: reason},
	}
}

// OnFailure is the crawl failure hook: it turns a URL that could not be
// fetched into its output record.
func OnFailure(url, reason string) PageResult {
	return AssembleFailure(url, reason)
}
