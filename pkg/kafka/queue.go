package kafka

import (
	"github.com/IBM/sarama"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Enqueuer interface {
	Enqueue(topic, key string, v any) error
}

// NewEnqueuer publishes through producer. A nil producer gives an enqueuer that drops everything.
func NewEnqueuer(producer sarama.SyncProducer) Enqueuer {
	if producer == nil {
		return nopEnqueuer{}
	}
	return &enqueuerImpl{
		producer: producer,
	}
}

type enqueuerImpl struct {
	producer sarama.SyncProducer
}

func (q *enqueuerImpl) Enqueue(topic, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(data),
	}
	if _, _, err = q.producer.SendMessage(msg); err != nil {
		return err
	}
	return nil
}

type nopEnqueuer struct{}

func (nopEnqueuer) Enqueue(string, string, any) error { return nil }

// Decode unmarshals a message value published by Enqueue.
func Decode(data []byte, v any) error {
	return json.Unmarshal(data, v)
}
