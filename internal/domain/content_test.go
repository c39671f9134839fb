package domain

import "testing"

func TestDefaultAnalysisWordCount(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
	}{
		{name: "three words", content: "a b c", want: 3},
		{name: "mixed whitespace", content: "  Hello\t#world \n@friend ", want: 3},
		{name: "empty", content: "", want: 0},
		{name: "only spaces", content: "   ", want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DefaultAnalysis(tt.content)
			if got.WordCount != tt.want {
				t.Fatalf("WordCount(%q) = %d, want %d", tt.content, got.WordCount, tt.want)
			}
			if len(got.Hashtags) != 0 || len(got.Mentions) != 0 {
				t.Fatalf("ожидали пустые hashtags/mentions, получили %v %v", got.Hashtags, got.Mentions)
			}
			if got.Hashtags == nil || got.Mentions == nil || got.KeyThemes == nil {
				t.Fatalf("массивы должны сериализоваться как [], а не null")
			}
			if got.CallToAction != nil {
				t.Fatalf("ожидали callToAction = nil")
			}
		})
	}
}

func TestPlatformSourceKind(t *testing.T) {
	cases := map[Platform]string{
		PlatformInstagram: "image-feed",
		PlatformFacebook:  "image-feed",
		PlatformTwitter:   "microblog",
		PlatformLinkedIn:  "professional-network",
		PlatformYouTube:   "video",
		PlatformBlog:      "generic-web",
	}
	for p, want := range cases {
		if got := p.SourceKind(); got != want {
			t.Fatalf("%s: ожидали %s, получили %s", p, want, got)
		}
	}
}

func TestToneValid(t *testing.T) {
	if !ToneCasual.Valid() {
		t.Fatalf("CASUAL должен быть допустимым")
	}
	if Tone("LOUD").Valid() {
		t.Fatalf("LOUD не должен быть допустимым")
	}
}
