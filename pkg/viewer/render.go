package viewer

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"

	"github.com/pkg/errors"
)

// jsGlobal is the global variable the viewer reads its configuration from.
const jsGlobal = "window.config"

// RenderJSON writes the canonical, indented JSON form of `cfg` to `w`.
func RenderJSON(cfg Config, w io.Writer) error {
	b, err := canonicalJSON(cfg)
	if err != nil {
		return err
	}
	_, err = w.Write(append(b, '\n'))
	return err
}

// RenderJS writes `cfg` as the `app-config.js` script loaded by the viewer.
func RenderJS(cfg Config, w io.Writer) error {
	b, err := canonicalJSON(cfg)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	buf.WriteString(jsGlobal)
	buf.WriteString(" = ")
	buf.Write(b)
	buf.WriteString(";\n")

	_, err = buf.WriteTo(w)
	return err
}

// Digest returns the hex-encoded sha256 of the canonical JSON form.
// Two configurations with the same digest render identically.
func (c Config) Digest() string {
	b, err := canonicalJSON(c)
	if err != nil {
		// only reachable with values json cannot encode in CornerstoneExtensionConfig
		return ""
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func canonicalJSON(cfg Config) ([]byte, error) {
	b, err := json.MarshalIndent(cfg.Normalize(), "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "cannot encode viewer configuration")
	}
	return b, nil
}

// Decode reads a configuration in either the JSON form or the script form
// produced by RenderJS. Unknown keys are rejected. The result is normalized
// but not validated.
func Decode(data []byte) (Config, error) {
	body := bytes.TrimSpace(data)

	if bytes.HasPrefix(body, []byte(jsGlobal)) {
		body = bytes.TrimSpace(bytes.TrimPrefix(body, []byte(jsGlobal)))
		if !bytes.HasPrefix(body, []byte("=")) {
			return Config{}, errors.Errorf("expect '=' after %s", jsGlobal)
		}
		body = bytes.TrimSpace(body[1:])
	}
	body = bytes.TrimSpace(bytes.TrimSuffix(body, []byte(";")))

	var cfg Config
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "cannot decode viewer configuration")
	}
	if dec.More() {
		return Config{}, errors.New("trailing data after viewer configuration")
	}

	return cfg.Normalize(), nil
}

// Parse decodes and validates a configuration. Values outside the
// supported enums, mismatching default source names or malformed URLs are
// rejected here, at load time.
func Parse(data []byte) (Config, error) {
	cfg, err := Decode(data)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
