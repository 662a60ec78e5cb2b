package kafka

import (
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
)

func TestNewProducerRequiresBrokers(t *testing.T) {
	if _, err := NewProducer(); err == nil {
		t.Fatal("expected an error without brokers")
	}
}

func TestEncode(t *testing.T) {
	fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	p := &Producer{now: func() time.Time { return fixed }}
	msgs, size, err := p.encode("runs", []Message{
		{Key: []byte("A"), Value: "raw"},
		{Key: []byte("B"), Value: map[string]int{"n": 1}, Headers: map[string]string{"kind": "summary"}},
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(msgs) != 2 || string(msgs[0].Value) != "raw" || string(msgs[1].Value) != `{"n":1}` {
		t.Fatalf("messages = %+v", msgs)
	}
	if size != int64(len("raw")+len(`{"n":1}`)) {
		t.Fatalf("size = %d", size)
	}
	if msgs[1].Topic != "runs" || !msgs[1].Time.Equal(fixed) {
		t.Fatalf("topic/time = %s %v", msgs[1].Topic, msgs[1].Time)
	}
	if len(msgs[1].Headers) != 1 || msgs[1].Headers[0].Key != "kind" || string(msgs[1].Headers[0].Value) != "summary" {
		t.Fatalf("headers = %+v", msgs[1].Headers)
	}
}

func TestEncodeRejectsUnmarshalable(t *testing.T) {
	p := &Producer{now: time.Now}
	if _, _, err := p.encode("t", []Message{{Value: make(chan int)}}); err == nil {
		t.Fatal("expected a marshal error")
	}
}

func TestParseCompression(t *testing.T) {
	tests := map[string]kafka.Compression{
		"":       kafka.Gzip,
		"gzip":   kafka.Gzip,
		"snappy": kafka.Snappy,
		"lz4":    kafka.Lz4,
		"zstd":   kafka.Zstd,
	}
	for in, want := range tests {
		if got := parseCompression(in); got != want {
			t.Errorf("parseCompression(%q) = %v, want %v", in, got, want)
		}
	}
}
