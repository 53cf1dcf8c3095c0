package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestScanProgress_Percent(t *testing.T) {
	tests := []struct {
		name     string
		physical []int
		finished bool
		want     float64
	}{
		{"nothing yet", nil, false, 0},
		{"first channel", []int{2}, false, 0},
		{"halfway", []int{2, 26}, false, 0.5},
		{"out of order", []int{26, 14}, false, 0.5},
		{"beyond max", []int{60}, false, 1},
		{"finished early", []int{8}, true, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewScanProgress("", 2, 50)
			p.Observe(tt.physical, 0, tt.finished)
			if got := p.Percent(); got != tt.want {
				t.Errorf("Percent() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScanProgress_ObserveKeepsHighest(t *testing.T) {
	p := NewScanProgress("", 2, 51)
	p.Observe([]int{8, 14}, 1, false)
	p.Observe([]int{8}, 2, false)

	if p.Highest != 14 {
		t.Errorf("Highest = %d, want 14", p.Highest)
	}
	if p.Found != 2 {
		t.Errorf("Found = %d, want 2", p.Found)
	}
	if !strings.Contains(p.Render(), "CH 14") {
		t.Errorf("Render() should name the highest channel:\n%s", p.Render())
	}
}

func TestScanProgress_EmptyBand(t *testing.T) {
	p := NewScanProgress("", 10, 10)
	p.Observe([]int{10}, 0, false)
	if p.Percent() != 0 {
		t.Errorf("Percent() = %v, want 0 for an empty band", p.Percent())
	}
}

func TestResult_RenderKeepsDetailOrder(t *testing.T) {
	out := NewSuccessResult("Tuned",
		Detail{Key: "Tuner", Value: "1"},
		Detail{Key: "Channel", Value: "8"},
		Detail{Key: "Programs", Value: "3"},
	).SetWidth(80).Render()

	tuner := strings.Index(out, "Tuner:")
	channel := strings.Index(out, "Channel:")
	programs := strings.Index(out, "Programs:")
	if tuner < 0 || channel < 0 || programs < 0 {
		t.Fatalf("Render() is missing details:\n%s", out)
	}
	if !(tuner < channel && channel < programs) {
		t.Errorf("details out of order:\n%s", out)
	}
}

func TestResult_FailureShowsErrorAndTips(t *testing.T) {
	out := NewFailureResult("Scan", errors.New("connection refused"),
		[]string{"Is the backend running?"}).SetWidth(80).Render()

	for _, want := range []string{"FAILED", "connection refused", "Troubleshooting", "Is the backend running?"} {
		if !strings.Contains(out, want) {
			t.Errorf("Render() missing %q:\n%s", want, out)
		}
	}
}

func TestPrinter_PlainTable(t *testing.T) {
	var buf bytes.Buffer
	p := &Printer{out: &buf, width: 80, Plain: true}

	p.PrintTable([]string{"Tuner", "Channel"}, [][]string{{"0", "8"}, {"1", "-"}})

	want := "Tuner\tChannel\n0\t8\n1\t-\n"
	if buf.String() != want {
		t.Errorf("PrintTable() = %q, want %q", buf.String(), want)
	}
}

func TestPrinter_PlainSkipsHeaderAndBoxes(t *testing.T) {
	var buf bytes.Buffer
	p := &Printer{out: &buf, width: 80, Plain: true}

	p.PrintHeader("Status", "tunerdash status")
	p.PrintSuccess("Connected", Detail{Key: "Device", Value: "1052ABCD"})

	want := SuccessMarker + " Connected\nDevice: 1052ABCD\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestPrinter_StyledTable(t *testing.T) {
	var buf bytes.Buffer
	p := &Printer{out: &buf, width: 80}

	p.PrintTable([]string{"Tuner", "Channel"}, [][]string{{"0", "8"}})

	out := buf.String()
	if !strings.Contains(out, "Tuner") || !strings.Contains(out, "╭") {
		t.Errorf("styled table should have a rounded border:\n%s", out)
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"  yes  \n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"y", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var out bytes.Buffer
			got := Confirm(strings.NewReader(tt.input), &out, "TEST", []string{"warning"})
			if got != tt.want {
				t.Errorf("Confirm(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if !strings.Contains(out.String(), "Proceed?") {
				t.Errorf("prompt not shown:\n%s", out.String())
			}
		})
	}
}
