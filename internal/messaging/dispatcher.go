package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gestorzap/botengine/internal/models"
)

// MaxDispatchDelay caps the pause a delay response may impose between two
// outbound messages, whatever the flow author configured.
const MaxDispatchDelay = 30 * time.Second

// Dispatch delivers the engine's ordered responses through the transport.
// Delivery stops at the first transport error; delay responses pause without
// sending anything. Buttons and lists are rendered as numbered text because
// neither transport exposes native interactive messages.
func Dispatch(ctx context.Context, svc Service, to string, responses []models.Response) error {
	for i, resp := range responses {
		switch resp.Type {
		case models.ResponseTypeDelay:
			if err := sleepCtx(ctx, delayDuration(resp.DelayMs)); err != nil {
				return err
			}
		case models.ResponseTypeImage, models.ResponseTypeDocument:
			if err := svc.SendMedia(ctx, to, resp.Content, resp.MediaURL, string(resp.Type)); err != nil {
				return fmt.Errorf("failed to deliver response %d: %w", i, err)
			}
		case models.ResponseTypeButtons:
			if err := svc.SendText(ctx, to, renderButtons(resp)); err != nil {
				return fmt.Errorf("failed to deliver response %d: %w", i, err)
			}
		case models.ResponseTypeList:
			if err := svc.SendText(ctx, to, renderList(resp.List)); err != nil {
				return fmt.Errorf("failed to deliver response %d: %w", i, err)
			}
		default:
			if err := svc.SendText(ctx, to, resp.Content); err != nil {
				return fmt.Errorf("failed to deliver response %d: %w", i, err)
			}
		}
	}
	return nil
}

func delayDuration(delayMs int) time.Duration {
	d := time.Duration(delayMs) * time.Millisecond
	if d < 0 {
		return 0
	}
	if d > MaxDispatchDelay {
		slog.Debug("Dispatch delay capped", "requested_ms", delayMs, "cap", MaxDispatchDelay)
		return MaxDispatchDelay
	}
	return d
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// renderButtons flattens a buttons response into numbered text options.
func renderButtons(resp models.Response) string {
	var sb strings.Builder
	sb.WriteString(resp.Content)
	for i, b := range resp.Buttons {
		sb.WriteString(fmt.Sprintf("\n%d. %s", i+1, b.Text))
	}
	return sb.String()
}

// renderList flattens a list message into sectioned numbered text.
func renderList(list *models.ListMessage) string {
	if list == nil {
		return ""
	}
	var sb strings.Builder
	if list.Title != "" {
		sb.WriteString("*" + list.Title + "*\n")
	}
	if list.Description != "" {
		sb.WriteString(list.Description + "\n")
	}
	n := 0
	for _, section := range list.Sections {
		if section.Title != "" {
			sb.WriteString("\n*" + section.Title + "*\n")
		}
		for _, row := range section.Rows {
			n++
			sb.WriteString(fmt.Sprintf("%d. %s", n, row.Title))
			if row.Description != "" {
				sb.WriteString(" - " + row.Description)
			}
			sb.WriteString("\n")
		}
	}
	if list.Footer != "" {
		sb.WriteString("\n" + list.Footer)
	}
	return strings.TrimRight(sb.String(), "\n")
}
