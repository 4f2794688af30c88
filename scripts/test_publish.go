//go:build ignore

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/hindrance-reporter/internal/domain"
	redisRepo "github.com/hindrance-reporter/internal/repository/redis"
)

// Публикует ReportSubmittedEvent, чтобы проверить export worker вручную:
//
//	go run scripts/test_publish.go -report <id> -user pilot-1
func main() {
	redisAddr := flag.String("redis", "localhost:6379", "Redis address for streams")
	reportID := flag.String("report", "", "Submitted report id")
	userID := flag.String("user", "pilot-1", "Report owner")
	flag.Parse()

	id, err := uuid.Parse(*reportID)
	if err != nil {
		log.Fatalf("Invalid -report: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: *redisAddr})
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	event := domain.ReportSubmittedEvent{
		ReportID:    id,
		UserID:      *userID,
		SubmittedAt: time.Now().UTC(),
	}
	msgID, err := redisRepo.NewReportEventStream(client, domain.StreamReportSubmitted, zap.NewNop()).
		PublishSubmitted(ctx, event)
	if err != nil {
		log.Fatalf("Failed to publish event: %v", err)
	}

	fmt.Printf("Event published\n")
	fmt.Printf("   Stream: %s\n", domain.StreamReportSubmitted)
	fmt.Printf("   Message ID: %s\n", msgID)
	fmt.Printf("   Report ID: %s\n", id)

	// Export worker кладет результат в кэш report:export:<id>
	key := fmt.Sprintf("report:export:%s", id)
	for i := 0; i < 30; i++ {
		if n, _ := client.Exists(ctx, key).Result(); n > 0 {
			fmt.Printf("\nExport cached under %s\n", key)
			return
		}
		time.Sleep(300 * time.Millisecond)
	}
	fmt.Println("Export not found in cache yet")
}
