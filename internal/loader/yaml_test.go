package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDB = `
Header:
  Type: EMOTE_DB
  Version: 1
Body:
  - Id: 1
    Name: Starter Emotes
    Type: Account
  - Id: 2
    Name: Halloween Emotes
    Type: Character
    RentalHours: 720
    Starttime: 2026-10-15
    Endtime: 2026-11-05
    KeepInShop: true
    Prices:
      - Material: Emote_Coin
        Amount: 5
      - Material: Pumpkin_Token
`

func TestParse(t *testing.T) {
	records, err := Parse([]byte(sampleDB))
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, uint32(1), first.ID)
	require.NotNil(t, first.Name)
	assert.Equal(t, "Starter Emotes", *first.Name)
	assert.Nil(t, first.RentalHours, "absent fields stay nil")
	assert.Nil(t, first.SaleStart)
	assert.Nil(t, first.KeepInShop)
	assert.Empty(t, first.Prices)

	second := records[1]
	require.NotNil(t, second.RentalHours)
	assert.Equal(t, uint32(720), *second.RentalHours)
	require.NotNil(t, second.SaleStart)
	assert.Equal(t, "2026-10-15", *second.SaleStart)
	require.NotNil(t, second.KeepInShop)
	assert.True(t, *second.KeepInShop)
	require.Len(t, second.Prices, 2)
	require.NotNil(t, second.Prices[0].Amount)
	assert.Equal(t, uint16(5), *second.Prices[0].Amount)
	assert.Nil(t, second.Prices[1].Amount, "omitted amount stays nil for the registry to default")
}

func TestParseRejectsWrongHeaderType(t *testing.T) {
	_, err := Parse([]byte("Header:\n  Type: ITEM_DB\n  Version: 1\nBody: []\n"))
	assert.Error(t, err)
}

func TestParseRejectsWrongVersion(t *testing.T) {
	_, err := Parse([]byte("Header:\n  Type: EMOTE_DB\n  Version: 2\nBody: []\n"))
	assert.Error(t, err)
}

func TestParseRejectsMalformedYAML(t *testing.T) {
	_, err := Parse([]byte("Header: [unterminated"))
	assert.Error(t, err)
}
