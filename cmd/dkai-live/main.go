// Command dkai-live is a terminal client for live voice conversations
// with the DINESHKUMAR.AI assistant. It streams microphone audio to the
// model, plays model speech as it arrives, and prints both sides of the
// conversation as they are transcribed.
//
// Usage:
//
//	go run ./cmd/dkai-live
//
// Environment variables:
//
//	GEMINI_API_KEY - Required (GOOGLE_API_KEY also accepted)
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	dkai "github.com/dineshkumar-ai/dkai-go/sdk"
)

var errMicClosed = errors.New("microphone closed")

func main() {
	_ = godotenv.Load()

	if os.Getenv("GEMINI_API_KEY") == "" && os.Getenv("GOOGLE_API_KEY") == "" {
		log.Fatal("GEMINI_API_KEY required")
	}

	fmt.Println("DINESHKUMAR.AI live voice assistant")
	fmt.Println("Speak naturally; press Ctrl+C to quit.")
	fmt.Println()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")
		cancel()
	}()

	client := dkai.NewClient(dkai.WithLogger(slog.Default()))

	session, err := client.Live.Connect(ctx, nil)
	if err != nil {
		log.Fatalf("Failed to start live session: %v", err)
	}

	mic, speaker, cleanupAudio := initAudio()
	scheduler := dkai.NewPlaybackScheduler(speaker)
	capture := dkai.NewCapturePipeline(mic, session)
	go func() {
		if err := capture.Run(); err != nil && !errors.Is(err, errMicClosed) {
			log.Printf("capture stopped: %v", err)
		}
	}()

	// Teardown order matters: stop feeding audio, close the session so
	// the event stream drains, then silence playback and release devices.
	// Device Close calls are idempotent, so the signal path below and
	// cleanupAudio overlapping with this is fine.
	defer func() {
		mic.Close()
		capture.Stop()
		session.Close()
		scheduler.Close()
		cleanupAudio()
	}()

	// On Ctrl-C, closing the mic unblocks the capture loop and closing
	// the session ends the event loop; the deferred func does the rest.
	go func() {
		<-ctx.Done()
		mic.Close()
		session.Close()
	}()

	transcript := dkai.NewTranscriptLog()
	for event := range session.Events() {
		transcript.Apply(event)
		switch e := event.(type) {
		case dkai.UserTranscriptEvent:
			rms, _ := capture.InputLevel()
			fmt.Printf("\r[mic %3.0f%%] You: %s", rms*100, interimLine(transcript))
		case dkai.ModelTranscriptEvent:
			fmt.Printf("\rAI:  %s", modelInterim(transcript))
		case dkai.AudioChunkEvent:
			scheduler.Enqueue(e.Data)
		case dkai.InterruptedEvent:
			scheduler.Interrupt()
		case dkai.TurnCompleteEvent:
			turns := transcript.Turns()
			last := turns[len(turns)-1]
			fmt.Printf("\rYou: %s\nAI:  %s\n\n", last.User, last.Model)
		case dkai.ErrorEvent:
			log.Printf("session error: %v", e.Err)
		case dkai.ClosedEvent:
			fmt.Println("\nSession closed.")
		}
	}
}

func interimLine(t *dkai.TranscriptLog) string {
	user, _ := t.Interim()
	return user
}

func modelInterim(t *dkai.TranscriptLog) string {
	_, model := t.Interim()
	return model
}
