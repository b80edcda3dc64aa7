package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeLanguageCode(t *testing.T) {
	tests := []struct {
		reply string
		want  string
	}{
		{"en", "en"},
		{"  FR\n", "fr"},
		{"vi (Vietnamese)", "vi"},
		{"es.", "es"},
		{"'en'", "en"},
		{"fr-FR", "frfr"},
		{"pt\tbr", "pt"},
		{"123", ""},
		{"", ""},
		{"   ", ""},
		{"日本語", ""},
	}
	for _, tt := range tests {
		t.Run(tt.reply, func(t *testing.T) {
			got := normalizeLanguageCode(tt.reply)
			assert.Equal(t, tt.want, got)
			assert.Regexp(t, `^[a-z]*$`, got)
		})
	}
}

func TestParseDefinition(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		want    definition
		wantErr bool
	}{
		{
			name:  "examples array joined",
			reply: `{"definition":"to move fast on foot","partOfSpeech":"verb","examples":["He can run fast.","I run every morning."]}`,
			want: definition{
				Definition:   "to move fast on foot",
				PartOfSpeech: "verb",
				Examples:     "He can run fast.. I run every morning.",
			},
		},
		{
			name:  "missing fields default to empty",
			reply: `{"definition":"a greeting"}`,
			want:  definition{Definition: "a greeting"},
		},
		{
			name:  "falsy values are empty",
			reply: `{"definition":null,"partOfSpeech":false,"examples":0}`,
			want:  definition{},
		},
		{
			name:  "scalars become text",
			reply: `{"definition":true,"partOfSpeech":"noun","examples":3.5}`,
			want:  definition{Definition: "true", PartOfSpeech: "noun", Examples: "3.5"},
		},
		{
			name:  "mixed array elements",
			reply: `{"definition":"d","examples":["a",null,1,false,["x","y"],{"k":"v"}]}`,
			want:  definition{Definition: "d", Examples: "a. . 1. false. x,y. {\"k\":\"v\"}"},
		},
		{
			name:  "nested object as compact json",
			reply: `{"definition":{"short":"fast","long":"very fast"}}`,
			want:  definition{Definition: `{"long":"very fast","short":"fast"}`},
		},
		{
			name:  "extra keys ignored",
			reply: `{"definition":"d","partOfSpeech":"noun","examples":"e","synonyms":["x"]}`,
			want:  definition{Definition: "d", PartOfSpeech: "noun", Examples: "e"},
		},
		{name: "not json", reply: "run: to move fast", wantErr: true},
		{name: "array", reply: `["to move fast"]`, wantErr: true},
		{name: "string", reply: `"to move fast"`, wantErr: true},
		{name: "null", reply: `null`, wantErr: true},
		{name: "code fence", reply: "```json\n{\"definition\":\"d\"}\n```", wantErr: true},
		{name: "empty", reply: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDefinition(tt.reply)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrMalformedDefinition))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrompts(t *testing.T) {
	auto := translatePrompt(AutoDetect, "fr")
	explicit := translatePrompt("en", "fr")

	assert.NotEqual(t, auto, explicit)
	assert.Contains(t, auto, "Detect the language of the provided text and translate it to fr.")
	assert.Contains(t, explicit, "Translate the following text from en to fr.")
	assert.Contains(t, dictionaryPrompt("run", "en"), `definition for the word "run" in en.`)
}

func TestLanguageName(t *testing.T) {
	assert.Equal(t, "French", LanguageName("fr"))
	assert.Equal(t, "Auto detect", LanguageName(AutoDetect))
	assert.Equal(t, "de", LanguageName("de"))
}
