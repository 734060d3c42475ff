package transcription

import "testing"

func TestIsNoise(t *testing.T) {
	noisy := []string{
		"(music playing)",
		"(Music)",
		"  (soft singing)  ",
		"(instrumental break)",
		"(applause)",
		"[Music]",
		"[MUSIC PLAYING]",
		"[inaudible]",
		"(laughs)",
		"♪♪",
		" ♪ ",
	}
	for _, s := range noisy {
		if !IsNoise(s) {
			t.Errorf("IsNoise(%q) = false, want true", s)
		}
	}

	speech := []string{
		"hello",
		"music",
		"(music) lover",
		"he said [sic] that",
		"",
	}
	for _, s := range speech {
		if IsNoise(s) {
			t.Errorf("IsNoise(%q) = true, want false", s)
		}
	}
}

func TestClean(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"hello", "hello"},
		{"  hello  ", "hello"},
		{"[Music] hello", "hello"},
		{"(coughs) hello", "hello"},
		{"hello [Music]", "hello"},
		{"hello (laughs)", "hello"},
		{"♪hello♫", "hello"},
		{"[Music]", ""},
		{"♪♪", ""},
		{"", ""},
	}
	for _, c := range cases {
		if got := Clean(c.in); got != c.want {
			t.Errorf("Clean(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestCleanIdempotent(t *testing.T) {
	inputs := []string{
		"hello", "[Music] hello (applause)", "♪ word ♪", "(a) b (c)",
	}
	for _, s := range inputs {
		once := Clean(s)
		if twice := Clean(once); twice != once {
			t.Errorf("Clean not idempotent on %q: %q then %q", s, once, twice)
		}
	}
}
