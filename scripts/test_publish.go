//go:build ignore
// +build ignore

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/photo-watermark/internal/domain"
)

func main() {
	redisAddr := flag.String("redis", "localhost:6379", "Redis address for streams")
	files := flag.String("files", "", "comma separated image paths")
	outputDir := flag.String("out", "", "output directory")
	wait := flag.Duration("wait", 2*time.Minute, "how long to wait for the done event (0 = don't wait)")
	flag.Parse()

	if *files == "" || *outputDir == "" {
		log.Fatal("usage: go run scripts/test_publish.go -files a.jpg,b.jpg -out /tmp/out")
	}

	client := redis.NewClient(&redis.Options{
		Addr: *redisAddr,
	})
	defer client.Close()

	ctx := context.Background()

	// Проверка подключения
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	event := domain.WatermarkJobEvent{
		JobID:     uuid.New(),
		FilePaths: strings.Split(*files, ","),
		OutputDir: *outputDir,
		Options: domain.WatermarkOptions{
			LineOptions: domain.LineOptions{
				ShowDateTime: true,
				ShowLocation: true,
			},
			WatermarkConfig: domain.WatermarkConfig{}.WithDefaults(),
		},
		SkipExisting: true,
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Fatalf("Failed to marshal event: %v", err)
	}

	// Запоминаем хвост done-стрима до публикации, чтобы не читать старые ответы
	lastID := "$"
	if msgs, err := client.XRevRangeN(ctx, domain.StreamWatermarkDone, "+", "-", 1).Result(); err == nil && len(msgs) > 0 {
		lastID = msgs[0].ID
	}

	result, err := client.XAdd(ctx, &redis.XAddArgs{
		Stream: domain.StreamWatermarkJobs,
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()
	if err != nil {
		log.Fatalf("Failed to publish event: %v", err)
	}

	fmt.Printf("✅ Job published\n")
	fmt.Printf("   Stream: %s\n", domain.StreamWatermarkJobs)
	fmt.Printf("   Message ID: %s\n", result)
	fmt.Printf("   Job ID: %s\n", event.JobID)
	fmt.Printf("   Files: %d\n", len(event.FilePaths))

	if *wait == 0 {
		return
	}

	fmt.Printf("\n⏳ Waiting for response in %s...\n", domain.StreamWatermarkDone)

	deadline := time.Now().Add(*wait)
	for time.Now().Before(deadline) {
		streams, err := client.XRead(ctx, &redis.XReadArgs{
			Streams: []string{domain.StreamWatermarkDone, lastID},
			Count:   10,
			Block:   time.Second,
		}).Result()
		if err != nil && err != redis.Nil {
			log.Fatalf("Failed to read done stream: %v", err)
		}

		for _, stream := range streams {
			for _, msg := range stream.Messages {
				lastID = msg.ID

				raw, ok := msg.Values["data"].(string)
				if !ok {
					continue
				}
				var done domain.WatermarkDoneEvent
				if err := json.Unmarshal([]byte(raw), &done); err != nil || done.JobID != event.JobID {
					continue
				}

				fmt.Printf("\n✅ Response received!\n")
				pretty, _ := json.MarshalIndent(done, "", "  ")
				fmt.Printf("%s\n", pretty)
				return
			}
		}
	}

	fmt.Println("❌ Timeout waiting for response")
}
