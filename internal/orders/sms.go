package orders

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"

	"ticket-bot/internal/models"
)

// SNSService is the part of the SNS client the notifier needs.
type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

const smsTemplate = "Заказ %s принят: %s --> %s, вылет %s, билетов: %d, сумма %s руб. Мы свяжемся с Вами в ближайшее время."

// SMSNotifier texts the order confirmation to the phone from the order.
type SMSNotifier struct {
	client   SNSService
	senderID string
}

// NewSMSNotifier texts the customer from senderID.
func NewSMSNotifier(client SNSService, senderID string) *SMSNotifier {
	return &SMSNotifier{client: client, senderID: senderID}
}

func (n *SMSNotifier) Name() string { return "sms" }

func (n *SMSNotifier) Notify(ctx context.Context, o models.Order) error {
	if o.Phone == "" {
		return nil
	}

	input := &sns.PublishInput{
		PhoneNumber: aws.String(o.Phone),
		Message:     aws.String(smsMessage(o)),
	}
	if n.senderID != "" {
		input.MessageAttributes = map[string]types.MessageAttributeValue{
			"AWS.SNS.SMS.SenderID": {
				DataType:    aws.String("String"),
				StringValue: aws.String(n.senderID),
			},
		}
	}

	if _, err := n.client.Publish(ctx, input); err != nil {
		return fmt.Errorf("publish sms for order %s: %w", o.ID, err)
	}
	return nil
}

func smsMessage(o models.Order) string {
	short := o.ID
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf(smsTemplate, short, o.Origin, o.Destination,
		o.DepartureAt.Format(models.DepartureLayout), o.TicketQty, models.FormatPrice(o.Total))
}
