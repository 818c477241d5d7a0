package workflow

import (
	"crypto/rand"
	"errors"
	"fmt"

	commonpb "go.temporal.io/api/common/v1"
	"go.temporal.io/sdk/converter"
	"golang.org/x/crypto/nacl/secretbox"
	"google.golang.org/protobuf/proto"
)

const (
	encryptionEncoding = "binary/secretbox"
	nonceSize          = 24
)

// EncryptionCodec seals every workflow payload with nacl/secretbox.
type EncryptionCodec struct {
	key [32]byte
}

var _ converter.PayloadCodec = (*EncryptionCodec)(nil)

func NewEncryptionCodec(key []byte) (*EncryptionCodec, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("encryption key must be 32 bytes, got %d", len(key))
	}
	c := &EncryptionCodec{}
	copy(c.key[:], key)
	return c, nil
}

func (c *EncryptionCodec) Encode(payloads []*commonpb.Payload) ([]*commonpb.Payload, error) {
	out := make([]*commonpb.Payload, len(payloads))
	for i, p := range payloads {
		raw, err := proto.Marshal(p)
		if err != nil {
			return nil, err
		}
		var nonce [nonceSize]byte
		if _, err := rand.Read(nonce[:]); err != nil {
			return nil, err
		}
		out[i] = &commonpb.Payload{
			Metadata: map[string][]byte{converter.MetadataEncoding: []byte(encryptionEncoding)},
			Data:     secretbox.Seal(nonce[:], raw, &nonce, &c.key),
		}
	}
	return out, nil
}

// Decode passes through payloads that were not produced by Encode.
func (c *EncryptionCodec) Decode(payloads []*commonpb.Payload) ([]*commonpb.Payload, error) {
	out := make([]*commonpb.Payload, len(payloads))
	for i, p := range payloads {
		if string(p.GetMetadata()[converter.MetadataEncoding]) != encryptionEncoding {
			out[i] = p
			continue
		}
		data := p.GetData()
		if len(data) < nonceSize {
			return nil, errors.New("encrypted payload is too short")
		}
		var nonce [nonceSize]byte
		copy(nonce[:], data[:nonceSize])
		raw, ok := secretbox.Open(nil, data[nonceSize:], &nonce, &c.key)
		if !ok {
			return nil, errors.New("payload decryption failed")
		}
		decoded := &commonpb.Payload{}
		if err := proto.Unmarshal(raw, decoded); err != nil {
			return nil, err
		}
		out[i] = decoded
	}
	return out, nil
}
