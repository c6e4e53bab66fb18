package services

import (
	"errors"
	"sync"
	"time"

	"abstract-review-api/models"

	"gorm.io/gorm"
)

// memoryStore is an in-memory ReviewStore for the service tests. It honors
// the same transactional contract as the GORM store: InTransaction serializes
// writers and rolls all state back when fn returns an error, so the tests can
// exercise atomicity and concurrent assignment without a database.
type memoryStore struct {
	mu sync.Mutex

	users   map[int]*models.User
	authors map[int]*models.Author
	events  map[int]*models.Event

	abstracts   map[int]*models.Abstract
	assignments map[int][]models.AbstractReviewer
	reviews     map[int][]models.Review

	histories     []models.AbstractStatusHistory
	notifications []models.Notification

	nextAssignmentID int
	nextReviewID     int

	// Fail the nth IncrementReviewLoad call (1-based) to force a rollback
	// mid-transaction. Zero disables the fail point.
	failIncrementAt int
	incrementCalls  int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users:       make(map[int]*models.User),
		authors:     make(map[int]*models.Author),
		events:      make(map[int]*models.Event),
		abstracts:   make(map[int]*models.Abstract),
		assignments: make(map[int][]models.AbstractReviewer),
		reviews:     make(map[int][]models.Review),
	}
}

type memorySnapshot struct {
	users            map[int]*models.User
	abstracts        map[int]*models.Abstract
	assignments      map[int][]models.AbstractReviewer
	reviews          map[int][]models.Review
	histories        []models.AbstractStatusHistory
	notifications    []models.Notification
	nextAssignmentID int
	nextReviewID     int
}

func (s *memoryStore) snapshot() memorySnapshot {
	snap := memorySnapshot{
		users:            make(map[int]*models.User, len(s.users)),
		abstracts:        make(map[int]*models.Abstract, len(s.abstracts)),
		assignments:      make(map[int][]models.AbstractReviewer, len(s.assignments)),
		reviews:          make(map[int][]models.Review, len(s.reviews)),
		histories:        append([]models.AbstractStatusHistory(nil), s.histories...),
		notifications:    append([]models.Notification(nil), s.notifications...),
		nextAssignmentID: s.nextAssignmentID,
		nextReviewID:     s.nextReviewID,
	}
	for id, u := range s.users {
		copy := *u
		snap.users[id] = &copy
	}
	for id, a := range s.abstracts {
		copy := *a
		snap.abstracts[id] = &copy
	}
	for id, rows := range s.assignments {
		snap.assignments[id] = append([]models.AbstractReviewer(nil), rows...)
	}
	for id, rows := range s.reviews {
		snap.reviews[id] = append([]models.Review(nil), rows...)
	}
	return snap
}

func (s *memoryStore) restore(snap memorySnapshot) {
	s.users = snap.users
	s.abstracts = snap.abstracts
	s.assignments = snap.assignments
	s.reviews = snap.reviews
	s.histories = snap.histories
	s.notifications = snap.notifications
	s.nextAssignmentID = snap.nextAssignmentID
	s.nextReviewID = snap.nextReviewID
}

func (s *memoryStore) InTransaction(fn func(tx ReviewStore) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	if err := fn(&memoryTx{s: s}); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func (s *memoryStore) GetAbstract(abstractID int) (*models.Abstract, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getAbstract(abstractID)
}

func (s *memoryStore) GetAbstractForUpdate(abstractID int) (*models.Abstract, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getAbstract(abstractID)
}

func (s *memoryStore) ListUnassignedAbstracts(eventID int) ([]models.Abstract, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listUnassignedAbstracts(eventID)
}

func (s *memoryStore) AddReviewer(assignment *models.AbstractReviewer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addReviewer(assignment)
}

func (s *memoryStore) IncrementReviewLoad(reviewerID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.incrementReviewLoad(reviewerID)
}

func (s *memoryStore) UpsertReview(review *models.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.upsertReview(review)
}

func (s *memoryStore) UpdateAbstract(abstractID int, fields map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateAbstract(abstractID, fields)
}

func (s *memoryStore) RecordStatusChange(history *models.AbstractStatusHistory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recordStatusChange(history)
}

func (s *memoryStore) GetReviewerAccount(reviewerID int) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getReviewerAccount(reviewerID)
}

func (s *memoryStore) GetEvent(eventID int) (*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getEvent(eventID)
}

func (s *memoryStore) ResolveSubmitter(abstract *models.Abstract) (*Submitter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolveSubmitter(abstract)
}

func (s *memoryStore) CreateNotification(n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createNotification(n)
}

// memoryTx is the transaction-scoped view handed to InTransaction callbacks.
// The store mutex is already held, so it calls the unlocked internals.
type memoryTx struct {
	s *memoryStore
}

func (t *memoryTx) InTransaction(fn func(tx ReviewStore) error) error {
	return fn(t)
}

func (t *memoryTx) GetAbstract(abstractID int) (*models.Abstract, error) {
	return t.s.getAbstract(abstractID)
}

func (t *memoryTx) GetAbstractForUpdate(abstractID int) (*models.Abstract, error) {
	return t.s.getAbstract(abstractID)
}

func (t *memoryTx) ListUnassignedAbstracts(eventID int) ([]models.Abstract, error) {
	return t.s.listUnassignedAbstracts(eventID)
}

func (t *memoryTx) AddReviewer(assignment *models.AbstractReviewer) error {
	return t.s.addReviewer(assignment)
}

func (t *memoryTx) IncrementReviewLoad(reviewerID int) error {
	return t.s.incrementReviewLoad(reviewerID)
}

func (t *memoryTx) UpsertReview(review *models.Review) error {
	return t.s.upsertReview(review)
}

func (t *memoryTx) UpdateAbstract(abstractID int, fields map[string]interface{}) error {
	return t.s.updateAbstract(abstractID, fields)
}

func (t *memoryTx) RecordStatusChange(history *models.AbstractStatusHistory) error {
	return t.s.recordStatusChange(history)
}

func (t *memoryTx) GetReviewerAccount(reviewerID int) (*models.User, error) {
	return t.s.getReviewerAccount(reviewerID)
}

func (t *memoryTx) GetEvent(eventID int) (*models.Event, error) {
	return t.s.getEvent(eventID)
}

func (t *memoryTx) ResolveSubmitter(abstract *models.Abstract) (*Submitter, error) {
	return t.s.resolveSubmitter(abstract)
}

func (t *memoryTx) CreateNotification(n *models.Notification) error {
	return t.s.createNotification(n)
}

// --- unlocked internals ---

func (s *memoryStore) getAbstract(abstractID int) (*models.Abstract, error) {
	stored, ok := s.abstracts[abstractID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}

	clone := *stored
	if event, ok := s.events[stored.EventID]; ok {
		eventCopy := *event
		clone.Event = &eventCopy
	}
	clone.Reviewers = append([]models.AbstractReviewer(nil), s.assignments[abstractID]...)
	for i := range clone.Reviewers {
		if user, ok := s.users[clone.Reviewers[i].ReviewerID]; ok {
			userCopy := *user
			clone.Reviewers[i].Reviewer = &userCopy
		}
	}
	clone.Reviews = append([]models.Review(nil), s.reviews[abstractID]...)
	return &clone, nil
}

func (s *memoryStore) listUnassignedAbstracts(eventID int) ([]models.Abstract, error) {
	var result []models.Abstract
	for id, a := range s.abstracts {
		if a.EventID != eventID || len(s.assignments[id]) > 0 {
			continue
		}
		clone, err := s.getAbstract(id)
		if err != nil {
			return nil, err
		}
		result = append(result, *clone)
	}
	return result, nil
}

func (s *memoryStore) addReviewer(assignment *models.AbstractReviewer) error {
	for _, existing := range s.assignments[assignment.AbstractID] {
		if existing.ReviewerID == assignment.ReviewerID {
			return errors.New("duplicate entry for abstract_reviewers")
		}
	}
	s.nextAssignmentID++
	assignment.AssignmentID = s.nextAssignmentID
	row := *assignment
	row.Reviewer = nil
	s.assignments[assignment.AbstractID] = append(s.assignments[assignment.AbstractID], row)
	return nil
}

func (s *memoryStore) incrementReviewLoad(reviewerID int) error {
	s.incrementCalls++
	if s.failIncrementAt > 0 && s.incrementCalls == s.failIncrementAt {
		return errors.New("forced workload counter failure")
	}
	user, ok := s.users[reviewerID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	user.ReviewLoad++
	return nil
}

func (s *memoryStore) upsertReview(review *models.Review) error {
	if review.ReviewID != 0 {
		rows := s.reviews[review.AbstractID]
		for i := range rows {
			if rows[i].ReviewID == review.ReviewID {
				rows[i].Score = review.Score
				rows[i].Comments = review.Comments
				rows[i].Decision = review.Decision
				rows[i].IsComplete = review.IsComplete
				rows[i].SubmittedAt = review.SubmittedAt
				return nil
			}
		}
		return gorm.ErrRecordNotFound
	}

	s.nextReviewID++
	review.ReviewID = s.nextReviewID
	row := *review
	row.Reviewer = nil
	s.reviews[review.AbstractID] = append(s.reviews[review.AbstractID], row)
	return nil
}

func (s *memoryStore) updateAbstract(abstractID int, fields map[string]interface{}) error {
	a, ok := s.abstracts[abstractID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for key, value := range fields {
		switch key {
		case "status":
			a.Status = value.(string)
		case "average_score":
			if p, ok := value.(*float64); ok {
				a.AverageScore = p
			} else {
				a.AverageScore = nil
			}
		case "update_at":
			ts := value.(time.Time)
			a.UpdateAt = &ts
		case "final_decision":
			if v, ok := value.(string); ok {
				a.FinalDecision = &v
			} else {
				a.FinalDecision = nil
			}
		case "decision_by":
			if v, ok := value.(int); ok {
				a.DecisionBy = &v
			} else {
				a.DecisionBy = nil
			}
		case "decision_date":
			if v, ok := value.(time.Time); ok {
				a.DecisionDate = &v
			} else {
				a.DecisionDate = nil
			}
		case "decision_reason":
			if v, ok := value.(string); ok {
				a.DecisionReason = &v
			} else {
				a.DecisionReason = nil
			}
		}
	}
	return nil
}

func (s *memoryStore) recordStatusChange(history *models.AbstractStatusHistory) error {
	history.HistoryID = len(s.histories) + 1
	s.histories = append(s.histories, *history)
	return nil
}

func (s *memoryStore) getReviewerAccount(reviewerID int) (*models.User, error) {
	user, ok := s.users[reviewerID]
	if !ok || user.DeleteAt != nil {
		return nil, gorm.ErrRecordNotFound
	}
	copy := *user
	return &copy, nil
}

func (s *memoryStore) getEvent(eventID int) (*models.Event, error) {
	event, ok := s.events[eventID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copy := *event
	return &copy, nil
}

func (s *memoryStore) resolveSubmitter(abstract *models.Abstract) (*Submitter, error) {
	switch {
	case abstract.RegistrantID != nil:
		user, ok := s.users[*abstract.RegistrantID]
		if !ok {
			return nil, gorm.ErrRecordNotFound
		}
		email := ""
		if user.Email != nil {
			email = *user.Email
		}
		id := user.UserID
		return &Submitter{UserID: &id, Name: user.FullName(), Email: email}, nil
	case abstract.AuthorID != nil:
		author, ok := s.authors[*abstract.AuthorID]
		if !ok {
			return nil, gorm.ErrRecordNotFound
		}
		return &Submitter{Name: author.Name, Email: author.Email}, nil
	}
	return nil, errors.New("abstract has no submitter identity")
}

func (s *memoryStore) createNotification(n *models.Notification) error {
	n.NotificationID = uint(len(s.notifications) + 1)
	n.CreateAt = time.Now()
	s.notifications = append(s.notifications, *n)
	return nil
}

// --- fixture helpers ---

func (s *memoryStore) addUser(id int, fname, lname string, roleID int, email string) *models.User {
	user := &models.User{UserID: id, UserFname: fname, UserLname: lname, RoleID: roleID}
	if email != "" {
		user.Email = &email
	}
	s.users[id] = user
	return user
}

func (s *memoryStore) addEvent(event *models.Event) *models.Event {
	s.events[event.EventID] = event
	return event
}

func (s *memoryStore) addAuthor(author *models.Author) *models.Author {
	s.authors[author.AuthorID] = author
	return author
}

func (s *memoryStore) addAbstract(abstract *models.Abstract) *models.Abstract {
	s.abstracts[abstract.AbstractID] = abstract
	return abstract
}

func (s *memoryStore) assignReviewerDirect(abstractID, reviewerID int) {
	s.nextAssignmentID++
	s.assignments[abstractID] = append(s.assignments[abstractID], models.AbstractReviewer{
		AssignmentID: s.nextAssignmentID,
		AbstractID:   abstractID,
		ReviewerID:   reviewerID,
		AssignedAt:   time.Now(),
	})
}

func (s *memoryStore) reviewLoad(reviewerID int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user, ok := s.users[reviewerID]; ok {
		return user.ReviewLoad
	}
	return 0
}

// --- collaborator fakes ---

type sentMessage struct {
	Recipient string
	Subject   string
	Body      string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (n *recordingNotifier) Notify(recipient, subject, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentMessage{Recipient: recipient, Subject: subject, Body: body})
	return n.err
}

func (n *recordingNotifier) sentTo(recipient string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	count := 0
	for _, m := range n.sent {
		if m.Recipient == recipient {
			count++
		}
	}
	return count
}

type staticCategoryDirectory struct {
	categories map[int]*models.Category
}

func (d *staticCategoryDirectory) GetCategory(eventID, categoryID int) (*models.Category, error) {
	category, ok := d.categories[categoryID]
	if !ok || category.EventID != eventID {
		return nil, ErrCategoryNotFound
	}
	return category, nil
}

func (d *staticCategoryDirectory) ListCategories(eventID int) ([]models.Category, error) {
	var result []models.Category
	for _, category := range d.categories {
		if category.EventID == eventID {
			result = append(result, *category)
		}
	}
	return result, nil
}
