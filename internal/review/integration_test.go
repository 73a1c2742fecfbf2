//go:build integration

package review_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/dshills/codelens/internal/review"
	"github.com/dshills/codelens/internal/store"
)

type clientProviderSpec struct {
	provider string
	envVar   string
}

var clientProviderSpecs = []clientProviderSpec{
	{"openai", "OPENAI_API_KEY"},
	{"gemini", "GEMINI_API_KEY"},
}

const vulnerableGo = `package cmd

import "os/exec"

func RunUserCommand(userInput string) (string, error) {
	out, err := exec.Command("bash", "-c", userInput).CombinedOutput()
	return string(out), err
}
`

func TestIntegration_ReviewCode(t *testing.T) {
	for _, spec := range clientProviderSpecs {
		t.Run(spec.provider, func(t *testing.T) {
			key := os.Getenv(spec.envVar)
			if key == "" {
				t.Skipf("skipping: %s not set", spec.envVar)
			}
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()

			c, err := review.NewClient(review.Options{Store: store.NewMemory()})
			if err != nil {
				t.Fatal(err)
			}

			r, err := c.ReviewCode(ctx, review.Request{
				Code:     vulnerableGo,
				FileName: "run.go",
				Provider: spec.provider,
				APIKey:   key,
			})
			if err != nil {
				t.Fatalf("ReviewCode error: %v", err)
			}
			if r.OverallScore < 0 || r.OverallScore > 100 {
				t.Errorf("score %d out of range", r.OverallScore)
			}
			if r.Summary == "" {
				t.Error("empty summary")
			}
			for i, is := range r.Issues {
				if is.Message == "" && is.Suggestion == "" {
					t.Errorf("issue[%d] has no text", i)
				}
			}
			t.Logf("provider=%s score=%d issues=%d", spec.provider, r.OverallScore, len(r.Issues))

			// The immediate second call must be stopped locally.
			_, err = c.ReviewCode(ctx, review.Request{Code: "x", FileName: "x.go", Provider: spec.provider, APIKey: key})
			if err == nil {
				t.Error("expected cooldown error on immediate retry")
			}
		})
	}
}
