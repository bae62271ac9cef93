package io

import (
	"encoding/json"
	"io"

	"github.com/mchxo/fates-visualization/pkg/errors"
	"github.com/mchxo/fates-visualization/pkg/reduce"
)

// ReadJSON decodes a document written by [WriteJSON].
//
// ReadJSON returns an INVALID_INPUT error if the JSON is malformed or has
// no results array. It does not close r.
func ReadJSON(r io.Reader) ([]*reduce.Result, error) {
	var doc struct {
		Results *[]*reduce.Result `json:"results"`
	}
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode tables")
	}
	if doc.Results == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "decode tables: no results array")
	}
	return *doc.Results, nil
}
