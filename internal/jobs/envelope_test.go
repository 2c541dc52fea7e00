package jobs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	t.Parallel()

	in := Envelope{
		Category: "design",
		Record: JobRecord{
			Category:     "design",
			ExternalID:   "42",
			Link:         "https://mostaql.com/project/42-logo",
			Title:        "Logo design",
			Budget:       "$50.00 - $100.00",
			Duration:     "5 Days",
			NumberOfBids: 3,
			PublishedAt:  "2024-01-15T00:00:00",
		},
	}

	payload, err := in.Encode()
	require.NoError(t, err)

	out, err := DecodeEnvelope(payload)
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestEnvelopeWireFormatIsCategoryRecordPair(t *testing.T) {
	t.Parallel()

	payload, err := Envelope{Category: "writing-translation", Record: JobRecord{ExternalID: "7"}}.Encode()
	require.NoError(t, err)
	require.Equal(t, byte('['), payload[0])
	require.Contains(t, string(payload), `"writing-translation"`)
	require.Contains(t, string(payload), `"project_id":"7"`)
	// Category lives in the pair, never inside the record map.
	require.NotContains(t, string(payload), `"category"`)

	out, err := DecodeEnvelope(payload)
	require.NoError(t, err)
	require.Equal(t, "writing-translation", out.Record.Category)
}

func TestDecodeEnvelopeMalformed(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"not json":        "{{{",
		"not an array":    `{"category":"design"}`,
		"too few":         `["design"]`,
		"too many":        `["design", {}, {}]`,
		"category number": `[42, {}]`,
		"record scalar":   `["design", "nope"]`,
	}
	for name, payload := range cases {
		_, err := DecodeEnvelope([]byte(payload))
		require.Error(t, err, name)
	}
}

func TestParsePlatform(t *testing.T) {
	t.Parallel()

	p, err := ParsePlatform("telegram")
	require.NoError(t, err)
	require.Equal(t, PlatformTelegram, p)

	p, err = ParsePlatform("discord")
	require.NoError(t, err)
	require.Equal(t, PlatformDiscord, p)

	_, err = ParsePlatform("carrier-pigeon")
	require.Error(t, err)
	require.Equal(t, "unknown", PlatformUnknown.String())
}
