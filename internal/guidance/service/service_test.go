package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/wellspring-backend/internal/guidance/engine"
	"github.com/yungbote/wellspring-backend/internal/guidance/history"
	"github.com/yungbote/wellspring-backend/internal/guidance/provider"
	"github.com/yungbote/wellspring-backend/internal/observability"
)

func newComposer() *engine.Composer {
	return engine.New(engine.Options{History: history.NewRing(history.DefaultCapacity)})
}

func providerReturning(out string, err error, calls *int) provider.Client {
	return provider.ClientFunc(func(ctx context.Context, msgs []provider.Message, _ provider.SendOptions) (string, error) {
		*calls++
		return out, err
	})
}

func TestRulesOnly(t *testing.T) {
	svc := NewGuidanceService(nil, newComposer(), RulesOnly{}, observability.NewMetrics("test"))
	res, err := svc.Guide(context.Background(), Request{Text: "I have 3 exams this week and can't sleep"})
	require.NoError(t, err)
	assert.Equal(t, engine.SourceRules, res.Source)
	assert.Equal(t, engine.MoodTired, res.Signals.Mood)
}

func TestProviderSuccessIsCleanedAndBounded(t *testing.T) {
	calls := 0
	completion := "Guidance: **You are carrying a lot.**\n\n- Take a short break\n- Then pick one topic to review\n" +
		strings.Repeat("Small steps add up over the week. ", 30)
	svc := NewGuidanceService(nil, newComposer(), ExternalProvider{Client: providerReturning(completion, nil, &calls)}, nil)

	res, err := svc.Guide(context.Background(), Request{Text: "exams tomorrow and i want to die"})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, engine.SourceProvider, res.Source)
	assert.True(t, strings.HasPrefix(res.Guidance, "You are carrying a lot. Take a short break"), res.Guidance)
	assert.NotContains(t, res.Guidance, "**")
	assert.NotContains(t, res.Guidance, "\n")
	assert.Contains(t, res.Guidance, engine.CrisisLine)
	assert.Equal(t, []string{engine.RiskCrisis}, res.Signals.RiskFlags)
	assert.LessOrEqual(t, utf8.RuneCountInString(res.Guidance), engine.EnvelopeFor(len("exams tomorrow and i want to die")).Max)
}

func TestProviderPromptCarriesSignals(t *testing.T) {
	var got []provider.Message
	client := provider.ClientFunc(func(_ context.Context, msgs []provider.Message, _ provider.SendOptions) (string, error) {
		got = msgs
		return "Take it one step at a time.", nil
	})
	svc := NewGuidanceService(nil, newComposer(), ExternalProvider{Client: client}, nil)
	_, err := svc.Guide(context.Background(), Request{Text: "My group project is a mess"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, provider.RoleSystem, got[0].Role)
	assert.Contains(t, got[1].Content, "Stressors: team, project")
	assert.Contains(t, got[1].Content, "my group project is a mess")
}

func TestProviderFailureFallsBack(t *testing.T) {
	for _, kind := range []provider.Kind{provider.KindRateLimit, provider.KindServer, provider.KindNetwork, provider.KindMalformed} {
		calls := 0
		client := providerReturning("", &provider.Error{Kind: kind, Err: errors.New("boom")}, &calls)
		svc := NewGuidanceService(nil, newComposer(), ExternalProvider{Client: client}, nil)
		res, err := svc.Guide(context.Background(), Request{Text: "so tired"})
		require.NoError(t, err, string(kind))
		assert.Equal(t, engine.SourceRules, res.Source)
		assert.NotEmpty(t, res.Guidance)
	}
}

func TestEmptyCompletionFallsBack(t *testing.T) {
	calls := 0
	svc := NewGuidanceService(nil, newComposer(), ExternalProvider{Client: providerReturning("Assistant: ** **", nil, &calls)}, nil)
	res, err := svc.Guide(context.Background(), Request{Text: "hello"})
	require.NoError(t, err)
	assert.Equal(t, engine.SourceRules, res.Source)
}

func TestConfigurationErrors(t *testing.T) {
	authErr := &provider.Error{Kind: provider.KindAuth, Status: 401, Err: errors.New("bad key")}

	calls := 0
	strict := NewGuidanceService(nil, newComposer(), ExternalProvider{Client: providerReturning("", authErr, &calls)}, nil)
	_, err := strict.Guide(context.Background(), Request{Text: "hello"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProviderMisconfigured)

	lenient := NewGuidanceService(nil, newComposer(), ExternalProvider{
		Client:                providerReturning("", authErr, &calls),
		FallbackOnConfigError: true,
	}, nil)
	res, err := lenient.Guide(context.Background(), Request{Text: "hello"})
	require.NoError(t, err)
	assert.Equal(t, engine.SourceRules, res.Source)
}

func TestCancelledCallerGetsNoFallback(t *testing.T) {
	ring := history.NewRing(history.DefaultCapacity)
	composer := engine.New(engine.Options{History: ring})
	ctx, cancel := context.WithCancel(context.Background())
	client := provider.ClientFunc(func(ctx context.Context, _ []provider.Message, _ provider.SendOptions) (string, error) {
		cancel()
		return "", &provider.Error{Kind: provider.KindNetwork, Err: ctx.Err()}
	})
	svc := NewGuidanceService(nil, composer, ExternalProvider{Client: client}, nil)

	_, err := svc.Guide(ctx, Request{Text: "hello"})
	assert.ErrorIs(t, err, context.Canceled)
	recent, _ := ring.Recent(context.Background())
	assert.Empty(t, recent)
}

func TestCleanCompletion(t *testing.T) {
	cases := map[string]string{
		"<s> Assistant: Hello   there </s>": "Hello there",
		"1. First\n2) Second":              "First Second",
		"## Heading\n*Be* __kind__ `today`": "Heading Be kind today",
		"Response: Guidance: okay":          "okay",
	}
	for in, want := range cases {
		assert.Equal(t, want, cleanCompletion(in), in)
	}
}
