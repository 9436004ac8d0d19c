package sentiment

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/klauspost/compress/gzip"
	"golang.org/x/text/encoding/charmap"
)

// HeaderSize is the size of the reserved header in front of the decompressed model document
const HeaderSize = 42

// modelTypeName is written into the header by WriteModel, readers never look at it.
// The header is a little-endian uint32 length followed by the name, 4+38 bytes.
const modelTypeName = "github.com/unixpickle/sentigraph.Bayes"

// keys of the model document, matched exactly
const (
	conditionalKey = "Conditional"
	negativeKey    = "1"
	positiveKey    = "2"
)

// Fetcher retrieves compressed model bytes
type Fetcher interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// FetcherFunc is an adapter to use ordinary functions as Fetcher
type FetcherFunc func(ctx context.Context) ([]byte, error)

// Fetch calls f(ctx)
func (f FetcherFunc) Fetch(ctx context.Context) ([]byte, error) { return f(ctx) }

// Decompressor turns compressed model bytes into the decompressed model
type Decompressor interface {
	Decompress(data []byte) ([]byte, error)
}

// DecompressorFunc is an adapter to use ordinary functions as Decompressor
type DecompressorFunc func(data []byte) ([]byte, error)

// Decompress calls f(data)
func (f DecompressorFunc) Decompress(data []byte) ([]byte, error) { return f(data) }

// GzipDecompressor is the default Decompressor, models are gzip streams
type GzipDecompressor struct{}

// Decompress reads the whole gzip stream
func (GzipDecompressor) Decompress(data []byte) ([]byte, error) {
	rd, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer rd.Close()
	res, err := io.ReadAll(rd)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Loader fetches, decompresses and parses a model. Any failed step terminates the load,
// no partial classifier is returned.
type Loader struct {
	Fetcher      Fetcher
	Decompressor Decompressor // GzipDecompressor if nil
}

type document struct {
	Conditional map[string]Table `json:"Conditional"`
}

// Load retrieves the model with Fetcher and makes a Classifier from it.
// Fetch and decompression are awaited against ctx, on cancellation ctx.Err() is returned.
func (l Loader) Load(ctx context.Context) (*Classifier, error) {
	if l.Fetcher == nil {
		return nil, fmt.Errorf("%w: no fetcher", ErrFetch)
	}
	compressed, err := await(ctx, func() ([]byte, error) { return l.Fetcher.Fetch(ctx) })
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}

	decompressor := l.decompressor()
	data, err := await(ctx, func() ([]byte, error) { return decompressor.Decompress(compressed) })
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %w", ErrDecompression, err)
	}
	return DecodeModel(data)
}

func (l Loader) decompressor() Decompressor {
	if l.Decompressor == nil {
		return GzipDecompressor{}
	}
	return l.Decompressor
}

// ParseModel decompresses compressed model bytes and makes a Classifier
func ParseModel(compressed []byte, d Decompressor) (*Classifier, error) {
	data, err := d.Decompress(compressed)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecompression, err)
	}
	return DecodeModel(data)
}

// DecodeModel makes a Classifier from the decompressed model: the header is skipped,
// each remaining byte is one ISO-8859-1 character of the json document.
func DecodeModel(data []byte) (*Classifier, error) {
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("%w: model size %d is less than header size %d", ErrModelParse, len(data), HeaderSize)
	}
	body, err := charmap.ISO8859_1.NewDecoder().Bytes(data[HeaderSize:])
	if err != nil {
		return nil, fmt.Errorf("%w: can't decode model text: %w", ErrModelParse, err)
	}

	var doc map[string]json.RawMessage
	if err = json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrModelParse, err)
	}
	rawConditional, ok := doc[conditionalKey]
	if !ok {
		return nil, fmt.Errorf("%w: no %s tables", ErrModelParse, conditionalKey)
	}
	var conditional map[string]map[string]*float64
	if err = json.Unmarshal(rawConditional, &conditional); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrModelParse, conditionalKey, err)
	}
	if conditional == nil {
		return nil, fmt.Errorf("%w: no %s tables", ErrModelParse, conditionalKey)
	}
	negative, err := conditionalTable(conditional, negativeKey, "negative")
	if err != nil {
		return nil, err
	}
	positive, err := conditionalTable(conditional, positiveKey, "positive")
	if err != nil {
		return nil, err
	}
	return NewClassifier(negative, positive)
}

// conditionalTable returns the table of the class key, null probabilities are rejected
func conditionalTable(conditional map[string]map[string]*float64, key, name string) (Table, error) {
	probs, ok := conditional[key]
	if !ok || probs == nil {
		return nil, fmt.Errorf("%w: no %s table %q", ErrModelParse, name, key)
	}
	res := make(Table, len(probs))
	for keyword, p := range probs {
		if p == nil {
			return nil, fmt.Errorf("%w: %s[%q] is not a number", ErrModelParse, name, keyword)
		}
		res[keyword] = *p
	}
	return res, nil
}

// WriteModel writes gzip-compressed model in the same framing DecodeModel reads.
// Non-ASCII keywords are written as json \u escapes, so the byte-per-character document
// decodes back to the same keywords.
func WriteModel(w io.Writer, negative, positive Table) error {
	if _, err := NewClassifier(negative, positive); err != nil {
		return fmt.Errorf("invalid tables: %w", err)
	}
	if negative == nil {
		negative = Table{}
	}
	if positive == nil {
		positive = Table{}
	}
	body, err := json.Marshal(document{Conditional: map[string]Table{negativeKey: negative, positiveKey: positive}})
	if err != nil {
		return fmt.Errorf("can't marshal model: %w", err)
	}

	gz := gzip.NewWriter(w)
	header := make([]byte, 4, HeaderSize)
	binary.LittleEndian.PutUint32(header, uint32(len(modelTypeName)))
	header = append(header, modelTypeName...)
	if _, err = gz.Write(header); err != nil {
		return fmt.Errorf("can't write header: %w", err)
	}
	if _, err = io.WriteString(gz, asciiJSON(body)); err != nil {
		return fmt.Errorf("can't write model: %w", err)
	}
	if err = gz.Close(); err != nil {
		return fmt.Errorf("can't close model writer: %w", err)
	}
	return nil
}

// asciiJSON replaces non-ASCII runes of marshaled json with \u escapes.
// Marshaled json has non-ASCII characters inside strings only.
func asciiJSON(data []byte) string {
	var sb strings.Builder
	sb.Grow(len(data))
	for _, r := range string(data) {
		switch {
		case r < utf8.RuneSelf:
			sb.WriteRune(r)
		case r > 0xFFFF:
			r -= 0x10000
			fmt.Fprintf(&sb, `\u%04x\u%04x`, 0xD800+(r>>10), 0xDC00+(r&0x3FF))
		default:
			fmt.Fprintf(&sb, `\u%04x`, r)
		}
	}
	return sb.String()
}

// await runs fn in a goroutine and waits for its result or ctx cancellation
func await(ctx context.Context, fn func() ([]byte, error)) ([]byte, error) {
	type result struct {
		data []byte
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		data, err := fn()
		ch <- result{data: data, err: err}
	}()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		return res.data, res.err
	}
}
