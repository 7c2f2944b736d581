package services

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"pathwise-backend/internal/repository"
)

const reminderPollInterval = time.Hour

// ReminderScheduler emails users who enabled notifications and have not met
// their daily goal once their configured reminder time has passed.
type ReminderScheduler struct {
	prefRepo *repository.PreferenceRepo
	email    *EmailService
	stopChan chan struct{}

	// lastSent deduplicates within a day: user id -> "2006-01-02"
	lastSent map[uuid.UUID]string
}

func NewReminderScheduler(prefRepo *repository.PreferenceRepo, email *EmailService) *ReminderScheduler {
	return &ReminderScheduler{
		prefRepo: prefRepo,
		email:    email,
		stopChan: make(chan struct{}),
		lastSent: make(map[uuid.UUID]string),
	}
}

func (s *ReminderScheduler) Start() {
	if s.prefRepo == nil || s.email == nil {
		return
	}

	go s.loop()
	log.Printf("Reminder scheduler started")
}

func (s *ReminderScheduler) Stop() {
	select {
	case <-s.stopChan:
		return
	default:
		close(s.stopChan)
	}
}

func (s *ReminderScheduler) loop() {
	ticker := time.NewTicker(reminderPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.sendReminders(context.Background(), time.Now().UTC())
		}
	}
}

func (s *ReminderScheduler) sendReminders(ctx context.Context, now time.Time) {
	recipients, err := s.prefRepo.ListReminderRecipients(ctx)
	if err != nil {
		log.Printf("reminders: failed to list recipients: %v", err)
		return
	}

	today := now.Format("2006-01-02")
	for _, rec := range recipients {
		if s.lastSent[rec.ID] == today {
			continue
		}

		reminderAt, err := time.Parse("15:04", rec.ReminderTime)
		if err != nil {
			continue
		}

		// Only remind after the user's chosen time of day
		nowMinutes := now.Hour()*60 + now.Minute()
		recMinutes := reminderAt.Hour()*60 + reminderAt.Minute()
		if nowMinutes < recMinutes {
			continue
		}

		spent, err := s.prefRepo.MinutesSpentToday(ctx, rec.ID)
		if err != nil {
			log.Printf("reminders: failed to read minutes for user %s: %v", rec.ID, err)
			continue
		}
		if spent >= rec.DailyGoalMinutes {
			continue
		}

		if err := s.email.SendDailyReminder(rec.Email, rec.FullName, rec.DailyGoalMinutes-spent); err != nil {
			log.Printf("reminders: failed to email user %s: %v", rec.ID, err)
			continue
		}
		s.lastSent[rec.ID] = today
	}
}
