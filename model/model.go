package model

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// NoReading is the reading value the backend sends for words it has no
// pronunciation for.
const NoReading = "*"

// ErrProtocol reports a backend response that is not an array of lines of
// token objects.
var ErrProtocol = errors.New("protocol error")

// Token is one word of annotated lyrics as exchanged with the annotation
// backend. Tokens are immutable once received.
type Token struct {
	Surface         string   `json:"surface"`
	Reading         string   `json:"reading"`
	Alternatives    []string `json:"alternatives"`
	HasAlternatives bool     `json:"has_alternatives"`
}

// SafeReading returns the reading with the NoReading sentinel mapped to "".
func (t Token) SafeReading() string {
	if t.Reading == NoReading {
		return ""
	}
	return t.Reading
}

// Line is one line of lyrics. An empty line has no tokens.
type Line []Token

// Request is the body of a conversion request.
type Request struct {
	Lyrics   string `json:"lyrics"`
	Katakana bool   `json:"katakana"`
}

// DecodeLines validates that data is a JSON array of lines, each an array of
// token objects, and decodes it. Any other shape yields an error wrapping
// ErrProtocol.
func DecodeLines(data []byte) ([]Line, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: response is not valid JSON", ErrProtocol)
	}
	root := gjson.ParseBytes(data)
	if !root.IsArray() {
		return nil, fmt.Errorf("%w: expected an array of lines", ErrProtocol)
	}

	for li, line := range root.Array() {
		if !line.IsArray() {
			return nil, fmt.Errorf("%w: line %d is not an array", ErrProtocol, li)
		}
		for ti, tok := range line.Array() {
			if err := checkToken(tok); err != nil {
				return nil, fmt.Errorf("%w: line %d token %d: %v", ErrProtocol, li, ti, err)
			}
		}
	}

	var lines []Line
	if err := json.Unmarshal(data, &lines); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProtocol, err)
	}
	for _, l := range lines {
		for i := range l {
			if l[i].Alternatives == nil {
				l[i].Alternatives = []string{}
			}
		}
	}
	return lines, nil
}

func checkToken(tok gjson.Result) error {
	if !tok.IsObject() {
		return errors.New("not an object")
	}
	if v := tok.Get("surface"); v.Type != gjson.String {
		return errors.New("surface must be a string")
	}
	if v := tok.Get("reading"); v.Exists() && v.Type != gjson.String && v.Type != gjson.Null {
		return errors.New("reading must be a string")
	}
	if v := tok.Get("alternatives"); v.Exists() && v.Type != gjson.Null {
		if !v.IsArray() {
			return errors.New("alternatives must be an array")
		}
		for _, a := range v.Array() {
			if a.Type != gjson.String {
				return errors.New("alternatives must hold strings")
			}
		}
	}
	if v := tok.Get("has_alternatives"); v.Exists() && !v.IsBool() {
		return errors.New("has_alternatives must be a boolean")
	}
	return nil
}
