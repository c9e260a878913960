package events

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher 将点赞事件投递到 RabbitMQ 队列，供下游异步消费。
// nil 实例的所有方法都是安全的无操作。
type Publisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
}

// LikeEvent 是点赞切换后发布的消息体。
type LikeEvent struct {
	ArticleID uint      `json:"articleId"`
	MemberID  uint      `json:"memberId"`
	Liked     bool      `json:"liked"`
	At        time.Time `json:"at"`
}

// NewPublisher 建立连接并声明持久化队列。
func NewPublisher(url, queue string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	return &Publisher{conn: conn, channel: ch, queue: queue}, nil
}

// LikeToggled 发布一条点赞切换事件，失败仅记录日志不影响主流程。
func (p *Publisher) LikeToggled(articleID, memberID uint, liked bool) {
	if p == nil {
		return
	}

	body, err := json.Marshal(LikeEvent{
		ArticleID: articleID,
		MemberID:  memberID,
		Liked:     liked,
		At:        time.Now(),
	})
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err = p.channel.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		log.Printf("failed to publish like event: %v", err)
	}
}

// Close 释放通道与连接。
func (p *Publisher) Close() {
	if p == nil {
		return
	}
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}
