package domain

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestBrandProfileJSONKeepsBothTones(t *testing.T) {
	bp := BrandProfile{ID: "b1", Tone: ToneProfessional}
	bp.StyleProfile.Tone = ToneCasual
	raw, err := json.Marshal(bp)
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	s := string(raw)
	if !strings.Contains(s, `"tone":"PROFESSIONAL"`) || !strings.Contains(s, `"styleTone":"CASUAL"`) {
		t.Fatalf("ожидали оба тона, получили %s", s)
	}
}
