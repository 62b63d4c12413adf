package audio

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// fakeRunner records every invocation and plays back scripted output.
type fakeRunner struct {
	calls  [][]string // name followed by args, per call
	output []byte
	err    error
}

func (f *fakeRunner) CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	call := append([]string{name}, args...)
	f.calls = append(f.calls, call)
	return f.output, f.err
}

func (f *fakeRunner) lastCall(t *testing.T) []string {
	t.Helper()
	if len(f.calls) == 0 {
		t.Fatal("no command was run")
	}
	return f.calls[len(f.calls)-1]
}

func argsContain(call []string, want string) bool {
	for _, a := range call {
		if a == want {
			return true
		}
	}
	return false
}

func TestProbeDuration(t *testing.T) {
	runner := &fakeRunner{output: []byte("1800.250000\n")}
	m := NewMeterWithRunner(runner)

	got, err := m.ProbeDuration(context.Background(), "episode.mkv")
	if err != nil {
		t.Fatalf("ProbeDuration: %v", err)
	}
	if got != 1800.25 {
		t.Errorf("duration = %v, want 1800.25", got)
	}

	call := runner.lastCall(t)
	if call[0] != "ffprobe" {
		t.Errorf("ran %q, want ffprobe", call[0])
	}
	for _, want := range []string{"-show_entries", "format=duration", "episode.mkv"} {
		if !argsContain(call, want) {
			t.Errorf("args %v missing %q", call, want)
		}
	}
}

func TestProbeDurationRunnerError(t *testing.T) {
	runErr := errors.New("ffprobe not found")
	m := NewMeterWithRunner(&fakeRunner{err: runErr})

	if _, err := m.ProbeDuration(context.Background(), "episode.mkv"); !errors.Is(err, runErr) {
		t.Errorf("err = %v, want wrapped runner error", err)
	}
}

func TestMeasureVolume(t *testing.T) {
	runner := &fakeRunner{output: []byte(
		"[Parsed_volumedetect_0 @ 0x1] mean_volume: -26.1 dB\n" +
			"[Parsed_volumedetect_0 @ 0x1] max_volume: -9.4 dB\n",
	)}
	m := NewMeterWithRunner(runner)

	got, err := m.MeasureVolume(context.Background(), "episode.mkv", 30, 30, true)
	if err != nil {
		t.Fatalf("MeasureVolume: %v", err)
	}
	if got.MaxVolumeDb != -9.4 || got.MeanVolumeDb != -26.1 {
		t.Errorf("stats = %+v, want max -9.4 mean -26.1", got)
	}

	call := runner.lastCall(t)
	if call[0] != "ffmpeg" {
		t.Errorf("ran %q, want ffmpeg", call[0])
	}
	for _, want := range []string{"-ss", "30.000", "-t", "episode.mkv"} {
		if !argsContain(call, want) {
			t.Errorf("args %v missing %q", call, want)
		}
	}
	if !argsContain(call, "highpass=f=200,lowpass=f=3500,volumedetect") {
		t.Errorf("args %v missing band-filtered volumedetect", call)
	}
}

func TestMeasureVolumeWithoutBandFilter(t *testing.T) {
	runner := &fakeRunner{output: []byte("[Parsed_volumedetect_0 @ 0x1] max_volume: -9.4 dB\n")}
	m := NewMeterWithRunner(runner)

	if _, err := m.MeasureVolume(context.Background(), "episode.mkv", 0, 30, false); err != nil {
		t.Fatalf("MeasureVolume: %v", err)
	}
	if !argsContain(runner.lastCall(t), "volumedetect") {
		t.Errorf("args %v missing bare volumedetect", runner.lastCall(t))
	}
}

func TestMeasureVolumeParsesDespiteExitError(t *testing.T) {
	// ffmpeg sometimes exits non-zero after printing the measurement; the
	// output wins over the exit status.
	runner := &fakeRunner{
		output: []byte("[Parsed_volumedetect_0 @ 0x1] max_volume: -12.0 dB\n"),
		err:    errors.New("exit status 1"),
	}
	m := NewMeterWithRunner(runner)

	got, err := m.MeasureVolume(context.Background(), "episode.mkv", 0, 30, true)
	if err != nil {
		t.Fatalf("MeasureVolume: %v", err)
	}
	if got.MaxVolumeDb != -12.0 {
		t.Errorf("MaxVolumeDb = %v, want -12", got.MaxVolumeDb)
	}
}

func TestMeasureVolumeUnparseable(t *testing.T) {
	m := NewMeterWithRunner(&fakeRunner{output: []byte("garbage\n")})

	if _, err := m.MeasureVolume(context.Background(), "episode.mkv", 0, 30, true); !errors.Is(err, ErrUnparseable) {
		t.Errorf("err = %v, want ErrUnparseable", err)
	}
}

func TestMeasurePercentiles(t *testing.T) {
	runner := &fakeRunner{output: []byte(
		"[Parsed_astats_0 @ 0x1] Peak level dB: -4.1\n" +
			"[Parsed_astats_0 @ 0x1] RMS level dB: -22.8\n",
	)}
	m := NewMeterWithRunner(runner)

	got, err := m.MeasurePercentiles(context.Background(), "episode.mkv", 60, true)
	if err != nil {
		t.Fatalf("MeasurePercentiles: %v", err)
	}
	if got.PeakLevelDb != -4.1 || got.RmsLevelDb != -22.8 {
		t.Errorf("levels = %+v, want peak -4.1 rms -22.8", got)
	}

	call := runner.lastCall(t)
	for _, want := range []string{"-t", "60.000"} {
		if !argsContain(call, want) {
			t.Errorf("args %v missing %q", call, want)
		}
	}
	var filterArg string
	for _, a := range call {
		if strings.Contains(a, "astats") {
			filterArg = a
		}
	}
	if !strings.HasPrefix(filterArg, "highpass=f=200,lowpass=f=3500,") {
		t.Errorf("astats filter %q not band-filtered", filterArg)
	}
	if !strings.Contains(filterArg, "measure_overall=Peak_level+RMS_level") {
		t.Errorf("astats filter %q missing overall measures", filterArg)
	}
}

func TestDetectSilenceEvents(t *testing.T) {
	runner := &fakeRunner{output: []byte(
		"[silencedetect @ 0x1] silence_start: 5.2\n" +
			"[silencedetect @ 0x1] silence_end: 7.9 | silence_duration: 2.7\n",
	)}
	m := NewMeterWithRunner(runner)

	got, err := m.DetectSilenceEvents(context.Background(), "episode.mkv", -31.25, 0.5, true)
	if err != nil {
		t.Fatalf("DetectSilenceEvents: %v", err)
	}
	want := []Event{
		{Kind: EventSilenceStart, Time: 5.2},
		{Kind: EventSilenceEnd, Time: 7.9},
	}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("events = %v, want %v", got, want)
	}

	if !argsContain(runner.lastCall(t), "highpass=f=200,lowpass=f=3500,silencedetect=noise=-31.25dB:d=0.500") {
		t.Errorf("args %v missing silencedetect filter", runner.lastCall(t))
	}
}

func TestDetectSilenceEventsErrorWithOutput(t *testing.T) {
	// Non-zero exit with output still parses; only a silent failure is
	// fatal.
	runner := &fakeRunner{
		output: []byte("[silencedetect @ 0x1] silence_start: 1.0\n"),
		err:    errors.New("exit status 1"),
	}
	m := NewMeterWithRunner(runner)

	got, err := m.DetectSilenceEvents(context.Background(), "episode.mkv", -30, 0.5, true)
	if err != nil {
		t.Fatalf("DetectSilenceEvents: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("events = %v, want one start event", got)
	}
}

func TestDetectSilenceEventsFatalWithoutOutput(t *testing.T) {
	runErr := errors.New("exec format error")
	m := NewMeterWithRunner(&fakeRunner{err: runErr})

	if _, err := m.DetectSilenceEvents(context.Background(), "episode.mkv", -30, 0.5, true); !errors.Is(err, runErr) {
		t.Errorf("err = %v, want wrapped runner error", err)
	}
}

func TestFormatSeconds(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.000"},
		{30, "30.000"},
		{0.5, "0.500"},
		{123.4567, "123.457"},
	}
	for _, tt := range tests {
		if got := formatSeconds(tt.in); got != tt.want {
			t.Errorf("formatSeconds(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
