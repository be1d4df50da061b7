// Package sharecode converts a progress store to and from a portable,
// printable token: JSON, zlib-compressed, standard base64.
package sharecode

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zlib"

	"github.com/abhisek/mathstudent/internal/progress"
)

// MaxDecodedSize bounds the inflated payload of a share code.
const MaxDecodedSize = 4 << 20

// Stage names the decoding step that rejected a token.
type Stage string

const (
	StageEmpty   Stage = "empty"
	StageBase64  Stage = "base64"
	StageInflate Stage = "inflate"
	StageJSON    Stage = "json"
	StageSchema  Stage = "schema"
)

// ErrMalformed is returned when a token cannot be decoded into a store.
type ErrMalformed struct {
	Stage Stage
	Err   error
}

func (e *ErrMalformed) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("malformed share code (%s)", e.Stage)
	}
	return fmt.Sprintf("malformed share code (%s): %v", e.Stage, e.Err)
}

func (e *ErrMalformed) Unwrap() error { return e.Err }

var errTooLarge = errors.New("payload exceeds size limit")

// Encode serializes s into a share code.
func Encode(s *progress.Store) (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("marshal progress: %w", err)
	}
	var buf bytes.Buffer
	zw, err := zlib.NewWriterLevel(&buf, zlib.BestCompression)
	if err != nil {
		return "", err
	}
	if _, err := zw.Write(data); err != nil {
		return "", fmt.Errorf("compress progress: %w", err)
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("compress progress: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// Decode parses a share code produced by Encode and migrates the stored
// blocks to the current schema. Surrounding whitespace is ignored. A code
// written by an incompatible major version yields
// *progress.ErrIncompatibleVersion; any other failure yields *ErrMalformed.
func Decode(token, currentVersion string) (*progress.Store, error) {
	data, err := Inflate(token)
	if err != nil {
		return nil, err
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &ErrMalformed{Stage: StageJSON, Err: err}
	}
	// Another major version may use a shape this schema does not know.
	if v, err := progress.PeekVersion(data); err == nil && v != "" && !progress.CompatibleVersion(v, currentVersion) {
		return nil, &progress.ErrIncompatibleVersion{Stored: v, Current: currentVersion}
	}
	if err := validateStore(doc); err != nil {
		return nil, &ErrMalformed{Stage: StageSchema, Err: err}
	}
	s, err := progress.DecodeCompatible(data, currentVersion)
	if err != nil {
		var incompatible *progress.ErrIncompatibleVersion
		if errors.As(err, &incompatible) {
			return nil, err
		}
		return nil, &ErrMalformed{Stage: StageJSON, Err: err}
	}
	return s, nil
}

// Inflate returns the raw JSON carried by a token without interpreting it.
func Inflate(token string) ([]byte, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, &ErrMalformed{Stage: StageEmpty}
	}
	compressed, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return nil, &ErrMalformed{Stage: StageBase64, Err: err}
	}
	zr, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, &ErrMalformed{Stage: StageInflate, Err: err}
	}
	defer zr.Close()

	data, err := io.ReadAll(io.LimitReader(zr, MaxDecodedSize+1))
	if err != nil {
		return nil, &ErrMalformed{Stage: StageInflate, Err: err}
	}
	if len(data) > MaxDecodedSize {
		return nil, &ErrMalformed{Stage: StageInflate, Err: errTooLarge}
	}
	return data, nil
}
