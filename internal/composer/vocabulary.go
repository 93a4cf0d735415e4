package composer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
)

// Vocabulary maps note-group tokens to dense ids and back. It is immutable after
// construction and safe for concurrent use.
type Vocabulary struct {
	tokens []string
	ids    map[string]int
}

// NewVocabulary builds a vocabulary where tokens[i] has id i
func NewVocabulary(tokens []string) (*Vocabulary, error) {
	if len(tokens) == 0 {
		return nil, fmt.Errorf("vocabulary is empty")
	}

	ids := make(map[string]int, len(tokens))
	for i, tok := range tokens {
		if _, dup := ids[tok]; dup {
			return nil, fmt.Errorf("duplicate token %q at id %d", tok, i)
		}
		ids[tok] = i
	}

	return &Vocabulary{
		tokens: append([]string(nil), tokens...),
		ids:    ids,
	}, nil
}

// LoadVocabulary reads either a JSON array of tokens (index = id) or a JSON object
// mapping decimal ids to tokens. Object ids must cover 0..N-1.
func LoadVocabulary(r io.Reader) (*Vocabulary, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read vocabulary: %w", err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var tokens []string
		if err := json.Unmarshal(trimmed, &tokens); err != nil {
			return nil, fmt.Errorf("decode vocabulary: %w", err)
		}
		return NewVocabulary(tokens)
	}

	var byID map[string]string
	if err := json.Unmarshal(trimmed, &byID); err != nil {
		return nil, fmt.Errorf("decode vocabulary: %w", err)
	}

	tokens := make([]string, len(byID))
	seen := make([]bool, len(byID))
	for key, tok := range byID {
		id, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("vocabulary id %q is not an integer", key)
		}
		if id < 0 || id >= len(tokens) {
			return nil, &OutOfRangeError{ID: id, Size: len(tokens)}
		}
		tokens[id] = tok
		seen[id] = true
	}
	for id, ok := range seen {
		if !ok {
			return nil, fmt.Errorf("vocabulary is missing id %d", id)
		}
	}
	return NewVocabulary(tokens)
}

// LoadVocabularyFile opens and decodes a vocabulary artifact
func LoadVocabularyFile(path string) (*Vocabulary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vocabulary: %w", err)
	}
	defer f.Close()
	return LoadVocabulary(f)
}

// Size is the number of tokens
func (v *Vocabulary) Size() int {
	return len(v.tokens)
}

// ID returns the id of a token
func (v *Vocabulary) ID(token string) (int, error) {
	id, ok := v.ids[token]
	if !ok {
		return 0, &UnknownTokenError{Token: token}
	}
	return id, nil
}

// Token returns the token for an id
func (v *Vocabulary) Token(id int) (string, error) {
	if id < 0 || id >= len(v.tokens) {
		return "", &OutOfRangeError{ID: id, Size: len(v.tokens)}
	}
	return v.tokens[id], nil
}

// Normalize scales an id to the model's feature space
func (v *Vocabulary) Normalize(id int) float64 {
	return float64(id) / float64(len(v.tokens))
}
