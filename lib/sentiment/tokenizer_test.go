package sentiment

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeywords(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"empty", "", []string{}},
		{"only spaces", "   ", []string{}},
		{"simple", "I love this", []string{"i", "love", "this"}},
		{"repeated letters", "loooove", []string{"loove"}},
		{"trailing punctuation", "apple!!", []string{"apple", "!!"}},
		{"collapsed punctuation", "wow!!!!", []string{"wow", "!!"}},
		{"parens", "(hi)", []string{"(", "hi", ")"}},
		{"quotes", `say "hi"`, []string{"say", `"`, "hi", `"`}},
		{"punctuation only", "...!!!", []string{"..!!"}},
		{"punctuation in the middle", "Hello,World", []string{"hello", ",", "world"}},
		{"apostrophe is not punctuation", "don't", []string{"don't"}},
		{"username", "@Alice hi", []string{"USERNAME", "hi"}},
		{"username alone", "@", []string{"USERNAME"}},
		{"username with punctuation", "@bob!!!", []string{"USERNAME"}},
		{"at inside word", "mail@host", []string{"mail@host"}},
		{"url", "http://x.com", []string{"URL"}},
		{"url upper case", "HTTP://X.COM", []string{"URL"}},
		{"https url inside token", "see(https://x.com/path)!!", []string{"URL"}},
		{"url in text", "look at https://example.com/loooong now", []string{"look", "at", "URL", "now"}},
		{"no scheme is not url", "www.example.com", []string{"ww", ".", "example", ".", "com"}},
		{"double space", "a  b", []string{"a", "b"}},
		{"tabs and newlines", "aaa\tbbb\nccc", []string{"aa", "bb", "cc"}},
		{"non-breaking space", "x\u00a0y", []string{"x", "y"}},
		{"unicode letters", "ПРИВЕЕЕТ!", []string{"привеет", "!"}},
		{"mixed", "I really loooove @apple products!!! http://apple.com", []string{"i", "really", "loove", "USERNAME",
			"products", "!!", "URL"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Keywords(tt.text))
		})
	}
}

func TestKeywords_Deterministic(t *testing.T) {
	inputs := []string{"I love this!!!", "@user check http://x.com", "(((wow)))", "loooooove it, really?"}
	for _, inp := range inputs {
		first := Keywords(inp)
		for range 10 {
			assert.Equal(t, first, Keywords(inp), inp)
		}
	}
}

func TestKeywordSet(t *testing.T) {
	res := KeywordSet("love love LOVE!! @a @b")
	assert.Equal(t, map[string]struct{}{"love": {}, "!!": {}, "USERNAME": {}}, res)
	assert.Empty(t, KeywordSet(""))
}

func TestSplitSpace(t *testing.T) {
	tests := []struct {
		text string
		want []string
	}{
		{"", []string{""}},
		{"a", []string{"a"}},
		{"a b", []string{"a", "b"}},
		{"a  b", []string{"a", "", "b"}},
		{" a ", []string{"", "a", ""}},
		{"a\u2003b", []string{"a", "b"}},
		{"a\ufeffb", []string{"a", "b"}},
		{"a\u0085b", []string{"a\u0085b"}},
		{"a\u00a0\u3000b", []string{"a", "", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, splitSpace(tt.text))
		})
	}
}

func TestCollapseRepeats(t *testing.T) {
	tests := []struct {
		inp, want string
	}{
		{"", ""},
		{"a", "a"},
		{"loove", "loove"},
		{"loooove", "loove"},
		{"loooooooove", "loove"},
		{"aaabbbccc", "aabbcc"},
		{"abababab", "abababab"},
		{"!!!!!", "!!"},
		{"ооооо", "оо"},
		{"\x00\x00\x00", "\x00\x00"},
	}
	for _, tt := range tests {
		t.Run(tt.inp, func(t *testing.T) {
			res := collapseRepeats(tt.inp)
			assert.Equal(t, tt.want, res)
			assert.Equal(t, res, collapseRepeats(res), "collapsing is idempotent")
			assert.LessOrEqual(t, maxRun(res), 2)
		})
	}
}

func TestSeparatePunctuation(t *testing.T) {
	tests := []struct {
		inp  string
		want []string
	}{
		{"", []string{}},
		{"wow!!", []string{"wow", "!!"}},
		{"(hi)", []string{"(", "hi", ")"}},
		{"a.b,c", []string{"a", ".", "b", ",", "c"}},
		{"?!", []string{"?!"}},
		{"plain", []string{"plain"}},
		{`"quoted"`, []string{`"`, "quoted", `"`}},
		{"a-b;c", []string{"a-b;c"}},
	}
	for _, tt := range tests {
		t.Run(tt.inp, func(t *testing.T) {
			res := separatePunctuation(tt.inp)
			assert.Equal(t, tt.want, res)
			assert.Equal(t, tt.inp, strings.Join(res, ""), "fragments keep all characters in order")
			for _, frag := range res {
				punct := strings.ContainsRune(punctuation, []rune(frag)[0])
				for _, ch := range frag {
					assert.Equal(t, punct, strings.ContainsRune(punctuation, ch), "mixed fragment %q", frag)
				}
			}
		})
	}
}

func maxRun(s string) int {
	res, count := 0, 0
	var last rune
	for i, ch := range s {
		if i > 0 && ch == last {
			count++
		} else {
			last, count = ch, 1
		}
		res = max(res, count)
	}
	return res
}
