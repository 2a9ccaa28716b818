package params

import "testing"

func TestQuoted(t *testing.T) {
	tests := []struct {
		name string
		line string
		key  byte
		want string
	}{
		{"With equals and command word", ` SET-STATION S="My Net" P="secret"`, 'S', "My Net"},
		{"Second key", ` SET-STATION S="My Net" P="secret"`, 'P', "secret"},
		{"Without equals", `S"Home WiFi" P"12345678"`, 'S', "Home WiFi"},
		{"No leading space", `S="abc"`, 'S', "abc"},
		{"Empty content", `S="" P="x"`, 'S', ""},
		{"Unterminated runs to end", `S="open ended`, 'S', "open ended"},
		{"Absent key", `S="abc"`, 'P', ""},
		{"Key inside quoted value is skipped", `S="a P=x" P="real"`, 'P', "real"},
		{"Bare value is not quoted", `S=abc`, 'S', ""},
		{"First occurrence wins", `S="one" S="two"`, 'S', "one"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Quoted(tt.line, tt.key); got != tt.want {
				t.Errorf("Quoted(%q, %q) = %q, want %q", tt.line, tt.key, got, tt.want)
			}
		})
	}
}

func TestBare(t *testing.T) {
	tests := []struct {
		name string
		line string
		key  byte
		want string
	}{
		{"Command word present", ` SET-STATION I192.168.1.5 J0.0.0.0`, 'I', "192.168.1.5"},
		{"Second token", ` SET-STATION I192.168.1.5 J0.0.0.0`, 'J', "0.0.0.0"},
		{"With equals", `P=0 S=1 R=8080`, 'R', "8080"},
		{"End of line", `C11`, 'C', "11"},
		{"Tab separated", "I1.2.3.4\tK255.0.0.0", 'K', "255.0.0.0"},
		{"Key only", `S`, 'S', ""},
		{"Embedded key not matched", `XI1.2.3.4`, 'I', ""},
		{"Absent", `S=1`, 'P', ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Bare(tt.line, tt.key); got != tt.want {
				t.Errorf("Bare(%q, %q) = %q, want %q", tt.line, tt.key, got, tt.want)
			}
		})
	}
}

func TestArgsHasAndInt(t *testing.T) {
	args := Parse(`P=0 S R=abc`)

	if !args.Has('P') || !args.Has('S') || !args.Has('R') {
		t.Error("Has() should report every key that appeared")
	}
	if args.Has('X') {
		t.Error("Has('X') = true, want false")
	}

	if args.HasValue('S') {
		t.Error("HasValue('S') = true for a key without value")
	}

	if n, ok := args.Int('P'); !ok || n != 0 {
		t.Errorf("Int('P') = %d, %v, want 0, true", n, ok)
	}
	if _, ok := args.Int('R'); ok {
		t.Error("Int('R') should fail on a non-numeric value")
	}
	if _, ok := args.Int('X'); ok {
		t.Error("Int('X') should fail on an absent key")
	}
}

func TestArgsEmpty(t *testing.T) {
	if !Parse("").Empty() {
		t.Error("Parse(\"\").Empty() = false")
	}
	if !Parse("   ").Empty() {
		t.Error("Parse of whitespace should be empty")
	}
	if Parse("S1").Empty() {
		t.Error("Parse(\"S1\").Empty() = true")
	}
}

func TestArgsGrammarPresence(t *testing.T) {
	tests := []struct {
		line       string
		key        byte
		wantQuoted bool
		wantBare   bool
	}{
		{line: `S="home"`, key: 'S', wantQuoted: true},
		{line: `S=""`, key: 'S', wantQuoted: true},
		{line: `P=password1`, key: 'P', wantBare: true},
		{line: `P=`, key: 'P', wantBare: true},
		{line: `I="1.2.3.4" I5.6.7.8`, key: 'I', wantQuoted: true, wantBare: true},
		{line: `S="home"`, key: 'P'},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			args := Parse(tt.line)
			if got := args.HasQuoted(tt.key); got != tt.wantQuoted {
				t.Errorf("HasQuoted(%c) = %v, want %v", tt.key, got, tt.wantQuoted)
			}
			if got := args.HasBare(tt.key); got != tt.wantBare {
				t.Errorf("HasBare(%c) = %v, want %v", tt.key, got, tt.wantBare)
			}
		})
	}
}
