package signer

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"

	"provd/internal/domain"
)

// The envelope rides in a trailer appended to the asset bytes:
// <asset> <envelope JSON> <8-byte BE payload length> <magic>. Readers
// check the suffix, so the asset body itself stays untouched and any
// container format can carry it.
var trailerMagic = []byte("PROVDC1\x00")

const trailerLenSize = 8

type signedManifestEntry struct {
	Manifest  domain.GeneratedManifest `json:"manifest"`
	Signature domain.Signature         `json:"signature"`
}

type envelope struct {
	Schema    string                `json:"schema"`
	Manifests []signedManifestEntry `json:"manifests"`
}

const envelopeSchema = "provd.envelope.v1"

func embedEnvelope(asset []byte, env envelope) ([]byte, error) {
	payload, err := json.Marshal(env)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(asset)+len(payload)+trailerLenSize+len(trailerMagic))
	out = append(out, asset...)
	out = append(out, payload...)
	out = binary.BigEndian.AppendUint64(out, uint64(len(payload)))
	out = append(out, trailerMagic...)
	return out, nil
}

// extractEnvelope splits signed bytes back into the asset body and the
// embedded envelope. A missing trailer returns a nil envelope and no
// error; a present-but-unparseable trailer returns an error.
func extractEnvelope(buf []byte) ([]byte, *envelope, error) {
	suffix := trailerLenSize + len(trailerMagic)
	if len(buf) < suffix {
		return buf, nil, nil
	}
	magicStart := len(buf) - len(trailerMagic)
	if !bytes.Equal(buf[magicStart:], trailerMagic) {
		return buf, nil, nil
	}
	lenStart := magicStart - trailerLenSize
	payloadLen := binary.BigEndian.Uint64(buf[lenStart:magicStart])
	if payloadLen > uint64(lenStart) {
		return buf, nil, errors.New("envelope length exceeds buffer")
	}
	payloadStart := lenStart - int(payloadLen)
	var env envelope
	if err := json.Unmarshal(buf[payloadStart:lenStart], &env); err != nil {
		return buf, nil, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Schema != envelopeSchema || len(env.Manifests) == 0 {
		return buf, nil, fmt.Errorf("unrecognized envelope schema %q", env.Schema)
	}
	return buf[:payloadStart], &env, nil
}
