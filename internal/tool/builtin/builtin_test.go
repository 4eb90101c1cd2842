// SPDX-License-Identifier: AGPL-3.0-only
package builtin

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatloop/chatloop/internal/tool"
)

func TestRegisterAll(t *testing.T) {
	reg := tool.NewRegistry()
	require.NoError(t, RegisterAll(reg))
	assert.Equal(t, 3, reg.Len())

	defs := reg.Definitions()
	names := make([]string, len(defs))
	for i, d := range defs {
		names[i] = d.Name
	}
	assert.Equal(t, []string{"get_current_weather", "calculate_total_price", "web_search"}, names)
}

func TestRegisterAllTwiceFails(t *testing.T) {
	reg := tool.NewRegistry()
	require.NoError(t, RegisterAll(reg))
	assert.Error(t, RegisterAll(reg))
}

func TestWeatherDeterministic(t *testing.T) {
	args := `{"location":"Lagos, Nigeria"}`

	first, err := Weather(context.Background(), json.RawMessage(args))
	require.NoError(t, err)
	second, err := Weather(context.Background(), json.RawMessage(args))
	require.NoError(t, err)
	assert.Equal(t, first, second, "same location must yield the same report")

	var report struct {
		Location    string `json:"location"`
		Temperature int    `json:"temperature"`
		Unit        string `json:"unit"`
		Condition   string `json:"condition"`
	}
	require.NoError(t, json.Unmarshal([]byte(first), &report))
	assert.Equal(t, "Lagos, Nigeria", report.Location)
	assert.Equal(t, "celsius", report.Unit)
	assert.NotEmpty(t, report.Condition)
	assert.GreaterOrEqual(t, report.Temperature, 2)
	assert.LessOrEqual(t, report.Temperature, 36)
}

func TestWeatherFahrenheitConversion(t *testing.T) {
	var c, f struct {
		Temperature int `json:"temperature"`
	}

	outC, err := Weather(context.Background(), json.RawMessage(`{"location":"Oslo"}`))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(outC), &c))

	outF, err := Weather(context.Background(), json.RawMessage(`{"location":"Oslo","unit":"fahrenheit"}`))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(outF), &f))

	assert.Equal(t, c.Temperature*9/5+32, f.Temperature)
}

func TestWeatherBlankLocation(t *testing.T) {
	_, err := Weather(context.Background(), json.RawMessage(`{"location":"  "}`))
	assert.Error(t, err)
}

func TestPrice(t *testing.T) {
	out, err := Price(context.Background(), json.RawMessage(`{"price":2.5,"quantity":4,"tax_rate":0.1}`))
	require.NoError(t, err)

	var result struct {
		Subtotal float64 `json:"subtotal"`
		Tax      float64 `json:"tax"`
		Total    float64 `json:"total"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.InDelta(t, 10.0, result.Subtotal, 0.001)
	assert.InDelta(t, 1.0, result.Tax, 0.001)
	assert.InDelta(t, 11.0, result.Total, 0.001)
}

func TestPriceNoTax(t *testing.T) {
	out, err := Price(context.Background(), json.RawMessage(`{"price":3,"quantity":2}`))
	require.NoError(t, err)

	var result struct {
		Total float64 `json:"total"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.InDelta(t, 6.0, result.Total, 0.001)
}

func TestPriceValidation(t *testing.T) {
	cases := []struct {
		name string
		args string
	}{
		{"negative price", `{"price":-1,"quantity":1}`},
		{"negative quantity", `{"price":1,"quantity":-1}`},
		{"tax rate above one", `{"price":1,"quantity":1,"tax_rate":1.5}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Price(context.Background(), json.RawMessage(tc.args))
			assert.Error(t, err)
		})
	}
}

func TestSearch(t *testing.T) {
	out, err := Search(context.Background(), json.RawMessage(`{"query":"go concurrency"}`))
	require.NoError(t, err)

	var result struct {
		Query   string `json:"query"`
		Results []struct {
			Title   string `json:"title"`
			URL     string `json:"url"`
			Snippet string `json:"snippet"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "go concurrency", result.Query)
	require.Len(t, result.Results, 3)
	for _, r := range result.Results {
		assert.NotEmpty(t, r.Title)
		assert.NotEmpty(t, r.URL)
		assert.NotEmpty(t, r.Snippet)
	}
}

func TestSearchMaxResults(t *testing.T) {
	out, err := Search(context.Background(), json.RawMessage(`{"query":"x","max_results":5}`))
	require.NoError(t, err)

	var result struct {
		Results []json.RawMessage `json:"results"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Len(t, result.Results, 5)
}

func TestSearchMaxResultsClamped(t *testing.T) {
	out, err := Search(context.Background(), json.RawMessage(`{"query":"x","max_results":50}`))
	require.NoError(t, err)

	var result struct {
		Results []json.RawMessage `json:"results"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Len(t, result.Results, 3)
}

func TestSearchBlankQuery(t *testing.T) {
	_, err := Search(context.Background(), json.RawMessage(`{"query":""}`))
	assert.Error(t, err)
}
