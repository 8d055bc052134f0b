package speech

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/polly"
	pollytypes "github.com/aws/aws-sdk-go-v2/service/polly/types"
)

type fakePollyClient struct {
	in  *polly.SynthesizeSpeechInput
	out *polly.SynthesizeSpeechOutput
	err error
}

func (f *fakePollyClient) SynthesizeSpeech(_ context.Context, params *polly.SynthesizeSpeechInput, _ ...func(*polly.Options)) (*polly.SynthesizeSpeechOutput, error) {
	f.in = params
	return f.out, f.err
}

func TestSynthesize(t *testing.T) {
	fake := &fakePollyClient{
		out: &polly.SynthesizeSpeechOutput{
			AudioStream: io.NopCloser(bytes.NewReader([]byte("mp3-bytes"))),
		},
	}
	s := NewPollySynthesizerWithClient(fake, Config{})

	audio, err := s.Synthesize(context.Background(), "A hopeful journey begins today.", 17, "female")
	if err != nil {
		t.Fatalf("合成に失敗しました: %v", err)
	}
	if string(audio) != "mp3-bytes" {
		t.Errorf("音声データが不正です: %q", audio)
	}

	if fake.in.OutputFormat != pollytypes.OutputFormatMp3 {
		t.Errorf("出力形式が不正です: %v", fake.in.OutputFormat)
	}
	if fake.in.Engine != pollytypes.EngineNeural {
		t.Errorf("既定エンジンが neural ではありません: %v", fake.in.Engine)
	}
	if fake.in.VoiceId != pollytypes.VoiceIdSalli {
		t.Errorf("ティーン女性の音声選択が不正です: %v", fake.in.VoiceId)
	}
}

func TestSynthesize_EmptyText(t *testing.T) {
	s := NewPollySynthesizerWithClient(&fakePollyClient{}, Config{})
	if _, err := s.Synthesize(context.Background(), "   ", 20, "male"); err == nil {
		t.Error("空テキストでエラーが返りません")
	}
}

func TestSynthesize_APIError(t *testing.T) {
	fake := &fakePollyClient{err: errors.New("TooManyRequestsException")}
	s := NewPollySynthesizerWithClient(fake, Config{})
	if _, err := s.Synthesize(context.Background(), "some narration", 20, "male"); err == nil {
		t.Error("APIエラーが伝播していません")
	}
}

func TestVoiceForProfile(t *testing.T) {
	cases := []struct {
		name   string
		age    int
		gender string
		want   pollytypes.VoiceId
	}{
		{"子供の男性", 10, "male", pollytypes.VoiceIdJustin},
		{"子供の中立", 12, "non-binary", pollytypes.VoiceIdIvy},
		{"ティーンの女性", 16, "female", pollytypes.VoiceIdSalli},
		{"成人の男性", 25, "male", pollytypes.VoiceIdMatthew},
		{"成人の回答なし", 30, "prefer-not-to-say", pollytypes.VoiceIdJoanna},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := VoiceForProfile(tc.age, tc.gender); got != tc.want {
				t.Errorf("VoiceForProfile(%d, %q) = %v, want %v", tc.age, tc.gender, got, tc.want)
			}
		})
	}
}
