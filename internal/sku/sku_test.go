package sku

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	Assert := assert.New(t)

	codes := []string{"DR", "XYZ", "A1", "TMP9F2C1A", "SHOES2"}
	sequences := []int{1, 2, 10, 999, 100500}

	for _, code := range codes {
		for _, seq := range sequences {
			article := Encode(code, seq)
			gotCode, gotSeq, err := Decode(article)
			Assert.NoError(err, "article: %s", article)
			Assert.Equal(code, gotCode)
			Assert.Equal(seq, gotSeq)
		}
	}
}

func TestEncodeFormat(t *testing.T) {
	Assert := assert.New(t)

	Assert.Equal("DR-1", Encode("DR", 1))
	Assert.Equal("XYZ-42", Encode("XYZ", 42))
}

func TestDecodeMalformed(t *testing.T) {
	Assert := assert.New(t)

	// руками набитые артикулы из реальных данных
	malformed := []string{
		"",
		"DR",
		"DR-",
		"-1",
		"DR-1a",
		"DR-1 ",
		"платье синее",
		"DR_1",
		"DR-1-",
		"DR--",
	}

	for _, article := range malformed {
		_, _, err := Decode(article)
		Assert.Error(err, "article: %q", article)
		Assert.IsType(&MalformedSkuError{}, err, "article: %q", article)
	}
}

func TestDecodeCodeWithDash(t *testing.T) {
	Assert := assert.New(t)

	// дефис внутри кода допустим - номер отделяется по последнему дефису
	code, seq, err := Decode("TMP-A1-7")
	Assert.NoError(err)
	Assert.Equal("TMP-A1", code)
	Assert.Equal(7, seq)
}
