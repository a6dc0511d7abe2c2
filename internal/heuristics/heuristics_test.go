package heuristics

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amishk599/ghboard/internal/model"
)

func TestSplitLocations(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"trailing empty dropped", "NYC; Remote; ", []string{"NYC", "Remote"}},
		{"single", "San Francisco, CA", []string{"San Francisco, CA"}},
		{"empty", "", []string{}},
		{"only separators", " ; ;; ", []string{}},
		{"inner whitespace kept", "  New York ;London  ", []string{"New York", "London"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := SplitLocations(tc.in)
			require.NotNil(t, got)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDetectRemoteHybrid(t *testing.T) {
	tests := []struct {
		in             string
		remote, hybrid bool
	}{
		{"Remote", true, false},
		{"REMOTE - US", true, false},
		{"rEmOtE; Berlin", true, false},
		{"Hybrid - London", false, true},
		{"Remote or Hybrid (NYC)", true, true},
		{"San Francisco, CA", false, false},
		{"", false, false},
	}
	for _, tc := range tests {
		remote, hybrid := DetectRemoteHybrid(tc.in)
		assert.Equal(t, tc.remote, remote, "remote for %q", tc.in)
		assert.Equal(t, tc.hybrid, hybrid, "hybrid for %q", tc.in)
	}
}

func TestExtractSalary_KMarkers(t *testing.T) {
	got := ExtractSalary("Range: $80k - $120k")
	require.NotNil(t, got)
	assert.Equal(t, model.SalaryRange{Min: 80000, Max: 120000, Currency: model.USD, Raw: "$80k - $120k"}, *got)
}

func TestExtractSalary_CanadaCue(t *testing.T) {
	got := ExtractSalary("Range: $80,000-$120,000 for Canada based role")
	require.NotNil(t, got)
	assert.Equal(t, model.CAD, got.Currency)
	assert.Equal(t, int64(80000), got.Min)
	assert.Equal(t, int64(120000), got.Max)
	assert.Equal(t, "$80,000-$120,000", got.Raw)
}

func TestExtractSalary_NoMatch(t *testing.T) {
	assert.Nil(t, ExtractSalary("no numbers here"))
	assert.Nil(t, ExtractSalary(""))
	// Mixed symbols are not a range.
	assert.Nil(t, ExtractSalary("$80k - £120k"))
}

func TestExtractSalary_Variants(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		min, max int64
		currency model.Currency
	}{
		{"plain digits taken literally", "Pay: $80000-$120000", 80000, 120000, model.USD},
		{"bare hundreds scaled", "$80 - $95", 80000, 95000, model.USD},
		{"pound sign", "Salary £50k–£70k", 50000, 70000, model.GBP},
		{"euro sign", "€60,000 - €80,000 gross", 60000, 80000, model.EUR},
		{"uppercase K", "$90K-$110K", 90000, 110000, model.USD},
		{"australia cue", "Based in Sydney, Australia. $120k - $150k", 120000, 150000, model.AUD},
		{"ireland cue", "Dublin, Ireland office: $70k - $90k", 70000, 90000, model.EUR},
		{"uk cue", "London, UK. $60k - $80k", 60000, 80000, model.GBP},
		{"reversed bounds swapped", "$120k - $80k", 80000, 120000, model.USD},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ExtractSalary(tc.in)
			require.NotNil(t, got)
			assert.Equal(t, tc.min, got.Min)
			assert.Equal(t, tc.max, got.Max)
			assert.Equal(t, tc.currency, got.Currency)
			assert.LessOrEqual(t, got.Min, got.Max)
		})
	}
}

func TestExtractSalary_CuePriority(t *testing.T) {
	// Both Canada and UK are mentioned; CAD is checked first.
	got := ExtractSalary("Open to UK or Canada applicants: $100k - $130k")
	require.NotNil(t, got)
	assert.Equal(t, model.CAD, got.Currency)
}

func TestExtractSalary_CueOutsideWindow(t *testing.T) {
	text := "Canada" + strings.Repeat(" ", 300) + "$100k - $130k"
	got := ExtractSalary(text)
	require.NotNil(t, got)
	assert.Equal(t, model.USD, got.Currency)
}

func TestExtractSalary_WindowCountsCharacters(t *testing.T) {
	tests := []struct {
		name string
		text string
		want model.Currency
	}{
		{"accented text before range", "Canada " + strings.Repeat("é", 150) + "$100k - $130k", model.CAD},
		{"accented text after range", "$100k - $130k " + strings.Repeat("é", 150) + " Canada", model.CAD},
		{"Montréal posting", "Montréal, Québec, Canada. " + strings.Repeat("à", 170) + " $90k - $120k", model.CAD},
		{"beyond 200 characters", "Canada " + strings.Repeat("é", 200) + "$100k - $130k", model.USD},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ExtractSalary(tc.text)
			require.NotNil(t, got)
			assert.Equal(t, tc.want, got.Currency)
		})
	}
}

func TestExtractSalary_OverflowYieldsNil(t *testing.T) {
	assert.Nil(t, ExtractSalary("$9999999999999999k - $10k"))
	assert.Nil(t, ExtractSalary("$99999999999999999999 - $10k"))
}

func TestExtractSalary_FirstRangeWins(t *testing.T) {
	got := ExtractSalary("Level 1: £40k - £50k. Level 2: $90k - $100k")
	require.NotNil(t, got)
	assert.Equal(t, model.GBP, got.Currency)
	assert.Equal(t, "£40k - £50k", got.Raw)
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		digits string
		k      bool
		want   int64
	}{
		{"80", false, 80000},
		{"80", true, 80000},
		{"80000", false, 80000},
		{"80,000", false, 80000},
		{"999", false, 999000},
		{"1000", false, 1000},
		{"1,500", true, 1500000},
	}
	for _, tc := range tests {
		got, err := parseAmount(tc.digits, tc.k)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "parseAmount(%q, %v)", tc.digits, tc.k)
	}

	_, err := parseAmount("9999999999999999", true)
	assert.ErrorIs(t, err, errAmountOverflow)
	_, err = parseAmount("9223372036854775", true)
	assert.NoError(t, err)
}

func TestPlainText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "double-encoded HTML from Greenhouse API",
			input: "This is the job description. &lt;p&gt;Any HTML included.&lt;/p&gt;",
			want:  "This is the job description. Any HTML included.",
		},
		{
			name:  "nested tags and whitespace",
			input: "&lt;p&gt;We are hiring.&lt;/p&gt;\n&lt;ul&gt;\n  &lt;li&gt;Write code&lt;/li&gt;&lt;li&gt;Review PRs&lt;/li&gt;\n&lt;/ul&gt;",
			want:  "We are hiring. Write code Review PRs",
		},
		{name: "plain text", input: "No tags here.", want: "No tags here."},
		{name: "empty", input: "", want: ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, PlainText(tc.input))
		})
	}
}

func TestSanitizeHTML(t *testing.T) {
	in := "&lt;p&gt;Hello &lt;a href=&quot;https://example.com&quot; onclick=&quot;x()&quot;&gt;link&lt;/a&gt;&lt;/p&gt;&lt;script&gt;alert(1)&lt;/script&gt;"
	got := SanitizeHTML(in)
	assert.Contains(t, got, "<p>")
	assert.Contains(t, got, `href="https://example.com"`)
	assert.NotContains(t, got, "onclick")
	assert.NotContains(t, got, "<script>")
}
