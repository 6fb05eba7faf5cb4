package ses

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"docbench/internal/domain"
	"docbench/internal/port"
)

// SendEmailAPI is the subset of the SES v2 client used to send notifications.
type SendEmailAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

type sesNotifier struct {
	client      SendEmailAPI
	fromAddress string
	fromName    string
	recipients  []string
}

// NewSESNotifier creates a new SES-backed ReportNotifier.
func NewSESNotifier(region, fromAddress, fromName string, recipients []string) (port.ReportNotifier, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	return NewSESNotifierWithClient(sesv2.NewFromConfig(cfg), fromAddress, fromName, recipients)
}

// NewSESNotifierWithClient creates a ReportNotifier around an existing client.
func NewSESNotifierWithClient(client SendEmailAPI, fromAddress, fromName string, recipients []string) (port.ReportNotifier, error) {
	if fromAddress == "" {
		return nil, errors.New("ses notifier: from address is required")
	}
	if len(recipients) == 0 {
		return nil, errors.New("ses notifier: at least one recipient is required")
	}
	return &sesNotifier{
		client:      client,
		fromAddress: fromAddress,
		fromName:    fromName,
		recipients:  recipients,
	}, nil
}

func (s *sesNotifier) NotifyReport(ctx context.Context, rep *domain.BatchReport, location string) error {
	subject := fmt.Sprintf("docbench run %s: %d/%d documents compared",
		rep.RunID, rep.Summary.SuccessfulComparisons, rep.Summary.TotalDocuments)
	textBody := buildSummaryText(rep, location)
	htmlBody := buildSummaryHTML(rep, location)

	from := s.fromAddress
	if s.fromName != "" {
		from = fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)
	}

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &from,
		Destination: &types.Destination{
			ToAddresses: s.recipients,
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &subject},
				Body: &types.Body{
					Html: &types.Content{Data: &htmlBody},
					Text: &types.Content{Data: &textBody},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	return nil
}

func formatAvg(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2fs", *v)
}

func summaryLines(rep *domain.BatchReport) [][2]string {
	ps := rep.Summary.PerformanceSummary
	return [][2]string{
		{"Total documents", fmt.Sprint(rep.Summary.TotalDocuments)},
		{"Successful comparisons", fmt.Sprint(rep.Summary.SuccessfulComparisons)},
		{domain.VendorAzure.DisplayName() + " average time", formatAvg(ps.AzureAvgTime)},
		{domain.VendorGoogle.DisplayName() + " average time", formatAvg(ps.GoogleAvgTime)},
		{domain.VendorAzure.DisplayName() + " faster", fmt.Sprint(ps.AzureFastestCount)},
		{domain.VendorGoogle.DisplayName() + " faster", fmt.Sprint(ps.GoogleFastestCount)},
	}
}

func buildSummaryText(rep *domain.BatchReport, location string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Comparison run %s finished at %s.\n\n", rep.RunID, rep.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	for _, l := range summaryLines(rep) {
		fmt.Fprintf(&b, "%s: %s\n", l[0], l[1])
	}
	if location != "" {
		fmt.Fprintf(&b, "\nFull report: %s\n", location)
	}
	return b.String()
}

func buildSummaryHTML(rep *domain.BatchReport, location string) string {
	var rows strings.Builder
	for _, l := range summaryLines(rep) {
		fmt.Fprintf(&rows, `    <tr><td style="padding: 4px 12px 4px 0; color: #666;">%s</td><td style="padding: 4px 0;">%s</td></tr>
`, html.EscapeString(l[0]), html.EscapeString(l[1]))
	}
	link := ""
	if location != "" {
		link = fmt.Sprintf(`  <p><a href="%s">Download the full report</a></p>
`, html.EscapeString(location))
	}
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">Comparison run %s</h2>
  <table>
%s  </table>
%s</body>
</html>`, html.EscapeString(rep.RunID), rows.String(), link)
}
