package invite

import (
	"slices"
	"testing"
)

func TestExtractCodes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "plain text",
			text: "Join: https://chat.whatsapp.com/ABC123xyz",
			want: []string{"ABC123xyz"},
		},
		{
			name: "http scheme",
			text: `<a href="http://chat.whatsapp.com/Abc_-9">join</a>`,
			want: []string{"Abc_-9"},
		},
		{
			name: "inside script",
			text: `<script>var g = "https://chat.whatsapp.com/ScriptCode1";</script>`,
			want: []string{"ScriptCode1"},
		},
		{
			name: "inside comment",
			text: `<!-- old group https://chat.whatsapp.com/Hidden42 -->`,
			want: []string{"Hidden42"},
		},
		{
			name: "malformed html",
			text: `<div><a href=https://chat.whatsapp.com/Broken<p>`,
			want: []string{"Broken"},
		},
		{
			name: "duplicates collapse in first-seen order",
			text: "https://chat.whatsapp.com/BBB https://chat.whatsapp.com/AAA https://chat.whatsapp.com/BBB",
			want: []string{"BBB", "AAA"},
		},
		{
			name: "upper case scheme and host",
			text: "HTTPS://CHAT.WHATSAPP.COM/MixedCase",
			want: []string{"MixedCase"},
		},
		{
			name: "code case preserved",
			text: "https://chat.whatsapp.com/abc https://chat.whatsapp.com/ABC",
			want: []string{"abc", "ABC"},
		},
		{
			name: "query stops the code",
			text: "https://chat.whatsapp.com/Code9?lang=en",
			want: []string{"Code9"},
		},
		{
			name: "no code after slash",
			text: "https://chat.whatsapp.com/ and https://chat.whatsapp.com/?x",
			want: nil,
		},
		{
			name: "different host",
			text: "https://web.whatsapp.com/abc https://chat.whatsappXcom/abc",
			want: nil,
		},
		{
			name: "empty",
			text: "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ExtractCodes(tt.text)
			if !slices.Equal(got, tt.want) {
				t.Errorf("ExtractCodes() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtractLinks(t *testing.T) {
	t.Parallel()

	text := "http://chat.whatsapp.com/One https://CHAT.whatsapp.com/Two https://chat.whatsapp.com/One"
	got := ExtractLinks(text)
	want := []string{"https://chat.whatsapp.com/One", "https://chat.whatsapp.com/Two"}
	if !slices.Equal(got, want) {
		t.Fatalf("ExtractLinks() = %v, want %v", got, want)
	}
	for _, link := range got {
		if !IsLink(link) {
			t.Errorf("IsLink(%q) = false, want true", link)
		}
	}

	if links := ExtractLinks("nothing here"); links != nil {
		t.Errorf("expected nil, got %v", links)
	}
}

func TestIsLink(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want bool
	}{
		{in: "https://chat.whatsapp.com/ABC123xyz", want: true},
		{in: "https://chat.whatsapp.com/a-b_c", want: true},
		{in: "http://chat.whatsapp.com/ABC", want: false},
		{in: "https://chat.whatsapp.com/", want: false},
		{in: "https://chat.whatsapp.com/AB C", want: false},
		{in: "https://chat.whatsapp.com/ABC?x=1", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			if got := IsLink(tt.in); got != tt.want {
				t.Errorf("IsLink(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
