package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/harvester/internal/core/domain"
)

func TestURLFilter_Matches(t *testing.T) {
	tests := []struct {
		name    string
		include []string
		exclude []string
		url     string
		want    bool
	}{
		{
			name: "no patterns matches everything",
			url:  "https://wiki.example.com/display/ENG/Home",
			want: true,
		},
		{
			name:    "include match",
			include: []string{`https://wiki\.example\.com/display/ENG/.*`},
			url:     "https://wiki.example.com/display/ENG/Home",
			want:    true,
		},
		{
			name:    "include miss",
			include: []string{`https://wiki\.example\.com/display/ENG/.*`},
			url:     "https://wiki.example.com/display/OPS/Home",
			want:    false,
		},
		{
			name:    "any include is enough",
			include: []string{`.*/ENG/.*`, `.*/OPS/.*`},
			url:     "https://wiki.example.com/display/OPS/Home",
			want:    true,
		},
		{
			name:    "exclude wins over include",
			include: []string{`.*/ENG/.*`},
			exclude: []string{`.*/Archive.*`},
			url:     "https://wiki.example.com/display/ENG/Archive-2019",
			want:    false,
		},
		{
			name:    "exclude only",
			exclude: []string{`.*/browse/SEC-\d+`},
			url:     "https://tracker.example.com/browse/SEC-12",
			want:    false,
		},
		{
			name:    "pattern must match the whole url",
			include: []string{`/browse/`},
			url:     "https://tracker.example.com/browse/ENG-1",
			want:    false,
		},
		{
			name:    "empty patterns are ignored",
			include: []string{""},
			url:     "https://tracker.example.com/browse/ENG-1",
			want:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := New(tt.include, tt.exclude)
			require.NoError(t, err)
			assert.Equal(t, tt.want, f.Matches(tt.url))
		})
	}
}

func TestNew_InvalidPattern(t *testing.T) {
	_, err := New(nil, []string{"(unclosed"})

	var cfgErr *domain.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "exclude_pattern", cfgErr.Param)
	assert.Contains(t, cfgErr.Reason, "(unclosed")
}

func TestBuilder_Build(t *testing.T) {
	f, err := Builder{}.Build([]string{`.*/ENG-\d+`}, nil)
	require.NoError(t, err)
	assert.True(t, f.Matches("https://tracker.example.com/browse/ENG-7"))
	assert.False(t, f.Matches("https://tracker.example.com/browse/OPS-7"))

	_, err = Builder{}.Build([]string{"["}, nil)
	assert.True(t, domain.IsConfigError(err))
}
