package html

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/harvester/internal/core/domain"
)

func TestNew(t *testing.T) {
	extractor := New()
	require.NotNil(t, extractor)
	assert.Contains(t, extractor.SupportedMIMETypes(), "text/html")
}

func TestExtract_HTML(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "paragraphs become lines",
			body: "<p>Hello World</p><p>Second   paragraph</p>",
			want: "Hello World\nSecond paragraph",
		},
		{
			name: "inline markup joins",
			body: "<p>Some <strong>bold</strong> and <em>italic</em> text</p>",
			want: "Some bold and italic text",
		},
		{
			name: "scripts and styles removed",
			body: "<html><head><title>T</title><style>p{color:red}</style></head>" +
				"<body><script>alert('x')</script><p>Visible</p><noscript>nojs</noscript></body></html>",
			want: "Visible",
		},
		{
			name: "entities decoded",
			body: "<p>Tom &amp; Jerry &lt;3&gt; &quot;quoted&quot;&nbsp;end</p>",
			want: `Tom & Jerry <3> "quoted" end`,
		},
		{
			name: "line breaks and lists",
			body: "<div>one<br>two<br/>three</div><ul><li>a</li><li>b</li></ul>",
			want: "one\ntwo\nthree\na\nb",
		},
		{
			name: "table cells separated",
			body: "<table><tr><th>Key</th><th>Value</th></tr><tr><td>a</td><td>1</td></tr></table>",
			want: "Key Value\na 1",
		},
		{
			name: "comments dropped",
			body: "<p>before<!-- hidden -->after</p>",
			want: "beforeafter",
		},
		{
			name: "empty body",
			body: "",
			want: "",
		},
		{
			name: "malformed markup is tolerated",
			body: "<p>unclosed <b>bold",
			want: "unclosed bold",
		},
	}

	extractor := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractor.Extract(tt.body, "text/html")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtract_MIMETypes(t *testing.T) {
	extractor := New()

	t.Run("charset parameter ignored", func(t *testing.T) {
		got, err := extractor.Extract("<p>x</p>", "text/html; charset=utf-8")
		require.NoError(t, err)
		assert.Equal(t, "x", got)
	})

	t.Run("plain text passes through", func(t *testing.T) {
		got, err := extractor.Extract("  line one \n\n\tline   two ", "text/plain")
		require.NoError(t, err)
		assert.Equal(t, "line one\nline two", got)
	})

	t.Run("plain text is not parsed as html", func(t *testing.T) {
		got, err := extractor.Extract("a <b> c", "text/plain")
		require.NoError(t, err)
		assert.Equal(t, "a <b> c", got)
	})

	t.Run("unsupported type", func(t *testing.T) {
		_, err := extractor.Extract("%PDF-1.4", "application/pdf")

		var extErr *domain.ExtractionError
		require.ErrorAs(t, err, &extErr)
		assert.Equal(t, "application/pdf", extErr.MIMEType)
		assert.ErrorIs(t, err, domain.ErrUnsupportedType)
	})
}
