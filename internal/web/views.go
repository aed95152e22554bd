package web

// views.go holds the helpers behind views.templ. Every fragment the SSE
// handlers patch has a stable id so datastar can morph it in place.

import (
	"encoding/json"
	"strconv"

	"github.com/JonMunkholm/csvpreview/internal/core"
)

//go:generate templ generate

const (
	idBanner     = "error-banner"
	idFileStatus = "file-status"
	idEmailKey   = "email-key"
	idRange      = "range-slider"
	idFields     = "range-fields"
	idRecipients = "recipients"
)

// previewSignals are the datastar signals the page posts back.
type previewSignals struct {
	Lo       int    `json:"lo"`
	Hi       int    `json:"hi"`
	EmailKey string `json:"emailKey"`
}

func signalsOf(snap core.Snapshot) previewSignals {
	return previewSignals{Lo: startOf(snap), Hi: stopOf(snap), EmailKey: snap.EmailKey}
}

// signalsJSON seeds the page's data-signals attribute. templ escapes it.
func signalsJSON(snap core.Snapshot) string {
	b, _ := json.Marshal(signalsOf(snap))
	return string(b)
}

func startOf(snap core.Snapshot) int {
	n, _ := strconv.Atoi(snap.Start)
	return n
}

func stopOf(snap core.Snapshot) int {
	n, _ := strconv.Atoi(snap.Stop)
	return n
}
