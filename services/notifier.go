package services

import (
	"fmt"
	"log"

	"abstract-review-api/config"
	"abstract-review-api/models"
)

// Notifier delivers a message to a single recipient address. Dispatch always
// happens after the surrounding transaction has committed; a delivery failure
// is logged and never rolls back or retries the committed change.
type Notifier interface {
	Notify(recipient, subject, body string) error
}

var sendMailFunc = config.SendMail

// MailNotifier sends notifications over SMTP.
type MailNotifier struct{}

func (MailNotifier) Notify(recipient, subject, body string) error {
	return sendMailFunc([]string{recipient}, subject, body)
}

// dispatcher fans status-change notifications out to email and the in-app
// notification feed. All delivery is best-effort.
type dispatcher struct {
	store    ReviewStore
	notifier Notifier
}

func (d *dispatcher) send(abstractID int, recipient, subject, body string) {
	if recipient == "" {
		log.Printf("notify: no contact address for abstract %d, skipping (%s)", abstractID, subject)
		return
	}
	if err := d.notifier.Notify(recipient, subject, body); err != nil {
		log.Printf("notify: failed to reach %s for abstract %d: %v", recipient, abstractID, err)
	}
}

func (d *dispatcher) createInApp(userID, abstractID int, title, message, typ string) {
	related := uint(abstractID)
	notif := models.Notification{
		UserID:            uint(userID),
		Title:             title,
		Message:           message,
		Type:              typ,
		RelatedAbstractID: &related,
		IsRead:            false,
	}
	if err := d.store.CreateNotification(&notif); err != nil {
		log.Printf("notify: failed to create in-app notification for user %d, abstract %d: %v", userID, abstractID, err)
	}
}

func (d *dispatcher) reviewerAssigned(abstract *models.Abstract, reviewer AssignedReviewer) {
	subject := fmt.Sprintf("Review assignment: %s", abstract.Title)
	body := fmt.Sprintf(
		"<p>Dear %s,</p><p>You have been assigned to review abstract <b>%s</b> (%s). Please submit your review at your earliest convenience.</p>",
		reviewer.Name, abstract.Title, abstract.AbstractNumber)
	d.send(abstract.AbstractID, reviewer.Email, subject, body)
	d.createInApp(reviewer.ReviewerID, abstract.AbstractID,
		"New review assignment",
		fmt.Sprintf("You have been assigned to review abstract %s", abstract.AbstractNumber),
		"info")
}

func (d *dispatcher) reReviewRequested(abstract *models.Abstract) {
	for _, assignment := range abstract.Reviewers {
		if assignment.Reviewer == nil || !assignment.Reviewer.HasEmail() {
			log.Printf("notify: reviewer %d has no contact address for abstract %d", assignment.ReviewerID, abstract.AbstractID)
			continue
		}
		subject := fmt.Sprintf("Revised abstract ready for re-review: %s", abstract.Title)
		body := fmt.Sprintf(
			"<p>Dear %s,</p><p>The revised version of abstract <b>%s</b> (%s) has been resubmitted and is ready for your re-review.</p>",
			assignment.Reviewer.FullName(), abstract.Title, abstract.AbstractNumber)
		d.send(abstract.AbstractID, *assignment.Reviewer.Email, subject, body)
		d.createInApp(assignment.ReviewerID, abstract.AbstractID,
			"Abstract resubmitted",
			fmt.Sprintf("Abstract %s has been revised and awaits your re-review", abstract.AbstractNumber),
			"info")
	}
}

func (d *dispatcher) submitterStatus(abstract *models.Abstract, title, message, typ string) {
	submitter, err := d.store.ResolveSubmitter(abstract)
	if err != nil {
		log.Printf("notify: failed to resolve submitter for abstract %d: %v", abstract.AbstractID, err)
		return
	}
	subject := fmt.Sprintf("%s: %s", title, abstract.Title)
	body := fmt.Sprintf("<p>Dear %s,</p><p>%s</p>", submitter.Name, message)
	d.send(abstract.AbstractID, submitter.Email, subject, body)
	if submitter.UserID != nil {
		d.createInApp(*submitter.UserID, abstract.AbstractID, title, message, typ)
	}
}

func (d *dispatcher) approved(abstract *models.Abstract) {
	d.submitterStatus(abstract,
		"Abstract approved",
		fmt.Sprintf("Your abstract %s has been approved.", abstract.AbstractNumber),
		"success")

	// Optional admin copy, controlled by event configuration.
	if abstract.Event != nil && abstract.Event.NotifyAdminsApproval &&
		abstract.Event.AdminEmail != nil && *abstract.Event.AdminEmail != "" {
		subject := fmt.Sprintf("Abstract approved: %s", abstract.Title)
		body := fmt.Sprintf("<p>Abstract <b>%s</b> (%s) has been approved.</p>", abstract.Title, abstract.AbstractNumber)
		d.send(abstract.AbstractID, *abstract.Event.AdminEmail, subject, body)
	}
}

func (d *dispatcher) revisionRequested(abstract *models.Abstract) {
	d.submitterStatus(abstract,
		"Revision requested",
		fmt.Sprintf("A reviewer has requested revisions to your abstract %s. Please revise and resubmit.", abstract.AbstractNumber),
		"warning")
}

func (d *dispatcher) rejected(abstract *models.Abstract) {
	d.submitterStatus(abstract,
		"Abstract decision",
		fmt.Sprintf("Your abstract %s has been rejected.", abstract.AbstractNumber),
		"warning")
}
