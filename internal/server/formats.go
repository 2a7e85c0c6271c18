package server

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"encoding/xml"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// normalizationResponse describes a single platform normalization.
type normalizationResponse struct {
	XMLName       xml.Name `json:"-" xml:"normalization"`
	Platform      string   `json:"platform" xml:"platform,attr"`
	ModelPlatform string   `json:"model_platform" xml:",chardata"`
	Alias         bool     `json:"alias" xml:"alias,attr"`
}

// preferredMime determines the response MIME type using the format query parameter or the Accept header.
func preferredMime(ginContext *gin.Context) string {
	if explicitFormat := ginContext.Query(queryParameterFormat); explicitFormat != "" {
		return strings.ToLower(strings.TrimSpace(explicitFormat))
	}
	return strings.ToLower(strings.TrimSpace(ginContext.GetHeader(headerAccept)))
}

// formatNormalization renders a normalization into the requested MIME type and returns the body and content type.
func formatNormalization(response normalizationResponse, preferred string) ([]byte, string, error) {
	switch {
	case preferred == formatJSON || strings.Contains(preferred, mimeApplicationJSON):
		encoded, encodeError := json.Marshal(response)
		return encoded, mimeApplicationJSON, encodeError
	case preferred == formatXML || strings.Contains(preferred, mimeApplicationXML) || strings.Contains(preferred, mimeTextXML):
		encoded, encodeError := xml.Marshal(response)
		return encoded, mimeApplicationXML, encodeError
	case preferred == formatCSV || strings.Contains(preferred, mimeTextCSV):
		var buffer bytes.Buffer
		csvWriter := csv.NewWriter(&buffer)
		_ = csvWriter.Write([]string{response.Platform, response.ModelPlatform, strconv.FormatBool(response.Alias)})
		csvWriter.Flush()
		return buffer.Bytes(), mimeTextCSV, csvWriter.Error()
	default:
		return []byte(response.ModelPlatform), mimeTextPlain, nil
	}
}
