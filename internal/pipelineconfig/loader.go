package pipelineconfig

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads pipeline defaults from a YAML file.
// Fields absent from the file keep their built-in default.
// KnownFields(true)로 오타/미사용 필드 즉시 실패
func Load(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("failed to read pipeline config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML bytes over Defaults() and validates the result
func Parse(data []byte) (Options, error) {
	opts := Defaults()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true) // 알 수 없는 필드 발견 시 에러 반환
	if err := dec.Decode(&opts); err != nil {
		return Options{}, fmt.Errorf("failed to decode pipeline config: %w", err)
	}
	opts.Chains = canonicalChains(opts.Chains)

	if err := Validate(opts); err != nil {
		return Options{}, err
	}

	return opts, nil
}

// Hash generates SHA256 hash from Options (canonical JSON)
// 주의: map 대신 struct 사용으로 해시 재현성 보장
func Hash(opts Options) (string, error) {
	jsonBytes, err := json.Marshal(opts)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(jsonBytes)
	return hex.EncodeToString(sum[:]), nil
}
