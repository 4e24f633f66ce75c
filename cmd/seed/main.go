package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/support-inbox/internal/auth"
	"github.com/spec-kit/support-inbox/internal/config"
	"github.com/spec-kit/support-inbox/internal/domain"
	"github.com/spec-kit/support-inbox/internal/observability"
	"github.com/spec-kit/support-inbox/internal/persistence"
	"github.com/spec-kit/support-inbox/internal/repository"
)

const (
	seedTicketCount = 40
	seedPassword    = "changeme123"
)

var agents = []domain.User{
	{Name: "Riya from Support", Email: "riya.support@helpdesk.in"},
	{Name: "Ankit from Support", Email: "ankit.support@helpdesk.in"},
	{Name: "Vikas from Support", Email: "vikas.support@helpdesk.in"},
}

var customers = []string{
	"amit.sharma@gmail.com",
	"priya.verma@gmail.com",
	"rahul.patil@gmail.com",
	"sneha.joshi@gmail.com",
	"rohit.kulkarni@gmail.com",
	"neha.singh@gmail.com",
	"kunal.mehta@gmail.com",
	"pooja.nair@gmail.com",
}

var titles = []string{
	"Unable to login into my account",
	"Payment failed but money deducted",
	"App is crashing after update",
	"Need GST invoice urgently",
	"OTP not received on mobile",
	"Password reset link not working",
	"Account blocked without any reason",
	"Subscription not activated",
}

var descriptions = []string{
	"I have been trying to login since morning but it keeps showing invalid credentials.",
	"My money got deducted from UPI but the payment status still shows failed.",
	"After updating the app from Play Store, it crashes as soon as I open it.",
	"I need the GST invoice for my company accounts for last month.",
	"I am not receiving any OTP on my registered mobile number.",
	"The password reset email shows an invalid or expired link.",
	"My account got suspended suddenly without any email notification.",
	"I paid for the premium plan but it is still showing free plan.",
}

var noteTexts = []string{
	"Thank you for raising this issue. We are checking the logs and will update you shortly.",
	"We have forwarded this to our technical team. You will get an update soon.",
	"Please try logging out and logging in again and let us know if the issue persists.",
	"We have raised an internal ticket and are working on a fix.",
	"Could you please share a screenshot of the error you are seeing?",
}

var statuses = []domain.TicketStatus{
	domain.TicketStatusOpen,
	domain.TicketStatusPending,
	domain.TicketStatusResolved,
}

var priorities = []domain.TicketPriority{
	domain.TicketPriorityLow,
	domain.TicketPriorityMedium,
	domain.TicketPriorityHigh,
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx := context.Background()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	noteRepo := repository.NewNoteRepository(pool)

	hash, err := auth.HashPassword(seedPassword, cfg.Auth.BcryptCost)
	if err != nil {
		logger.Fatal("failed to hash seed password", zap.Error(err))
	}

	agentIDs := make([]int64, 0, len(agents))
	for i := range agents {
		agent := agents[i]
		agent.PasswordHash = hash
		if err := userRepo.Create(ctx, &agent); err != nil {
			logger.Fatal("failed to seed agent", zap.String("email", agent.Email), zap.Error(err))
		}
		agentIDs = append(agentIDs, agent.ID)
	}
	logger.Info("seeded agents", zap.Int("count", len(agentIDs)))

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	now := time.Now()

	for i := 0; i < seedTicketCount; i++ {
		pick := rng.Intn(len(titles))
		ticket := &domain.Ticket{
			Title:         titles[pick],
			Description:   descriptions[pick],
			CustomerEmail: customers[rng.Intn(len(customers))],
			Status:        statuses[rng.Intn(len(statuses))],
			Priority:      priorities[rng.Intn(len(priorities))],
			// spread creations over the last week so the stats
			// histogram has something to show
			CreatedAt: now.AddDate(0, 0, -rng.Intn(7)).Add(-time.Duration(rng.Intn(86400)) * time.Second),
		}
		if err := ticketRepo.Create(ctx, ticket); err != nil {
			logger.Fatal("failed to seed ticket", zap.Error(err))
		}

		for n := 0; n < rng.Intn(3); n++ {
			authorID := agentIDs[rng.Intn(len(agentIDs))]
			note := &domain.Note{
				TicketID: ticket.ID,
				AuthorID: &authorID,
				Text:     noteTexts[rng.Intn(len(noteTexts))],
			}
			if err := noteRepo.Insert(ctx, note); err != nil {
				logger.Fatal("failed to seed note", zap.Error(err))
			}
		}
	}
	logger.Info("seeded tickets", zap.Int("count", seedTicketCount))

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	token, expiresAt, err := tokens.GenerateToken(agentIDs[0], agents[0].Email)
	if err != nil {
		logger.Fatal("failed to issue dev token", zap.Error(err))
	}

	fmt.Printf("dev bearer token for %s (expires %s):\n%s\n", agents[0].Email, expiresAt.Format(time.RFC3339), token)
}
