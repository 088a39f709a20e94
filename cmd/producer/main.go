package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"
)

var (
	broker   = flag.String("broker", "localhost:9092", "Kafka broker address")
	topic    = flag.String("topic", "calcstats-values", "Topic to produce to")
	interval = flag.Duration("interval", 200*time.Millisecond, "Delay between messages")
	count    = flag.Int("count", 0, "Number of messages to produce (0 = until interrupted)")
	batch    = flag.Int("batch", 0, "Emit arrays of this many values per message (for chunked mode)")
)

// ValueMessage matches what calcstats projects with input.field=value.
type ValueMessage struct {
	Timestamp time.Time `json:"timestamp"`
	Sensor    string    `json:"sensor"`
	Value     *float64  `json:"value"`
}

func main() {
	flag.Parse()

	writer := &kafka.Writer{
		Addr:     kafka.TCP(*broker),
		Topic:    *topic,
		Balancer: &kafka.LeastBytes{},
	}
	defer func() {
		if err := writer.Close(); err != nil {
			log.Fatalf("Error closing kafka writer: %v", err)
		}
	}()
	log.Printf("Starting sample producer for topic: %s on broker: %s", *topic, *broker)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-signals
		log.Println("Shutdown signal received, stopping producer...")
		cancel()
	}()

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	for produced := 0; *count == 0 || produced < *count; {
		select {
		case <-ticker.C:
			payload, err := nextPayload(rng)
			if err != nil {
				log.Printf("Error marshalling message: %v", err)
				continue
			}

			err = writer.WriteMessages(ctx, kafka.Message{Value: payload})
			if err != nil {
				if ctx.Err() != nil {
					log.Println("Context cancelled, exiting message loop.")
					return
				}
				log.Printf("Error writing message: %v", err)
				continue
			}
			produced++
			log.Printf("Produced message %d: %s", produced, string(payload))

		case <-ctx.Done():
			log.Println("Producer loop stopped.")
			return
		}
	}
	log.Printf("Produced %d messages, done.", *count)
}

func nextPayload(rng *rand.Rand) ([]byte, error) {
	if *batch > 0 {
		values := make([]*float64, *batch)
		for i := range values {
			values[i] = sampleValue(rng)
		}
		return json.Marshal(values)
	}
	return json.Marshal(ValueMessage{
		Timestamp: time.Now(),
		Sensor:    fmt.Sprintf("sensor_%d", rng.Intn(10)),
		Value:     sampleValue(rng),
	})
}

// sampleValue returns a rounded reading around 10, null about 10% of the time
// and a -9999 no-data sentinel about 2% of the time.
func sampleValue(rng *rand.Rand) *float64 {
	p := rng.Float64()
	switch {
	case p < 0.10:
		return nil
	case p < 0.12:
		v := -9999.0
		return &v
	}
	v := float64(int((10.0+rng.NormFloat64()*2.0)*10)) / 10
	return &v
}
