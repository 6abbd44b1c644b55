package router

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/aretw0/skury/pkg/domain"
	"github.com/aretw0/skury/pkg/gemini"
	"github.com/aretw0/skury/pkg/mcq"
)

const (
	chatSetupText = "Please set your Gemini API key using the console command:\n" +
		"await chrome.storage.local.set({geminiApiKey: 'YOUR-API-KEY'})"
	suggestSetupText = "Please set your Gemini API key using:\n" +
		"await chrome.storage.local.set({geminiApiKey: 'YOUR-API-KEY'})"
)

func (r *Router) generate(ctx context.Context, kind domain.Kind, p domain.Prompt) (string, error) {
	if r.model == nil {
		return "", domain.ErrMissingCredential
	}
	start := time.Now()
	text, err := r.model.Generate(ctx, p)
	r.hooks.remote(ctx, RemoteEvent{Kind: kind, Duration: time.Since(start), Err: err})
	return text, err
}

func (r *Router) remoteCall(ctx context.Context, msg domain.RemoteCall) domain.Response {
	if msg.Prompt == "" && msg.ImageData == "" {
		return domain.Failf(domain.ErrInvalidRequest, "No prompt or image provided.")
	}

	p := domain.Prompt{Parts: []string{gemini.StyleInstruction}}
	if msg.Prompt != "" {
		p.Parts = append(p.Parts, msg.Prompt)
	}
	if msg.ImageData != "" {
		img := gemini.ParseImageData(msg.ImageData)
		p.Image = &img
	}

	reply, err := r.generate(ctx, domain.KindRemoteCall, p)
	if err != nil {
		return modelFailure(err, chatSetupText)
	}
	return domain.Response{Reply: mcq.Reduce(msg.Prompt, reply)}
}

func (r *Router) suggestAnswer(ctx context.Context, msg domain.SuggestAnswer) domain.Response {
	if strings.TrimSpace(msg.QuestionText) == "" || len(msg.Options) == 0 {
		return domain.Failf(domain.ErrInvalidRequest, "Invalid request: questionText and options required.")
	}

	p := domain.Prompt{
		Parts:           []string{mcq.BuildPrompt(msg.QuestionText, msg.Options)},
		MaxOutputTokens: gemini.SuggestMaxOutputTokens,
	}
	reply, err := r.generate(ctx, domain.KindSuggestAnswer, p)
	if err != nil {
		return modelFailure(err, suggestSetupText)
	}

	letter, _ := mcq.ExtractOptionLetter(reply)
	index := mcq.LetterIndex(letter)
	return domain.Response{
		OptionIndex:  &index,
		OptionLetter: letter,
		Explanation:  reply,
		Confidence:   mcq.Confidence(index),
	}
}

func modelFailure(err error, setup string) domain.Response {
	if errors.Is(err, domain.ErrMissingCredential) {
		return domain.Fail(&domain.UserError{Kind: domain.ErrMissingCredential, Text: setup})
	}
	return domain.Fail(err)
}
