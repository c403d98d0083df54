package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestKillConfirmerAnswers(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "yes short", input: "y\n", want: true},
		{name: "yes word", input: "Yes\n", want: true},
		{name: "no", input: "n\n", want: false},
		{name: "empty line", input: "\n", want: false},
		{name: "eof", input: "", want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var prompt bytes.Buffer
			confirm := killConfirmer(strings.NewReader(tc.input), &prompt)
			if got := confirm(7); got != tc.want {
				t.Fatalf("confirm(%q) = %t, want %t", tc.input, got, tc.want)
			}
			if !strings.Contains(prompt.String(), "kill job 7?") {
				t.Fatalf("prompt missing job id: %q", prompt.String())
			}
		})
	}
}

func TestKillConfirmerReadsOneAnswerPerCall(t *testing.T) {
	confirm := killConfirmer(strings.NewReader("n\ny\n"), &bytes.Buffer{})
	if confirm(3) {
		t.Fatal("first answer should decline")
	}
	if !confirm(3) {
		t.Fatal("second answer should accept")
	}
}
