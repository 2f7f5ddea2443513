package main

import (
	"context"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/clinicdesk/appointment-book/internal/appointment"
	"github.com/clinicdesk/appointment-book/internal/catalog"
	"github.com/clinicdesk/appointment-book/internal/db"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	gofakeit.Seed(time.Now().UnixNano())

	repo := appointment.NewPgRepository(pool)
	cat := catalog.Default()

	patients, err := seedPatients(context.Background(), repo, 40)
	if err != nil {
		log.Fatalf("seed patients: %v", err)
	}
	if err := seedAppointments(context.Background(), repo, cat, patients); err != nil {
		log.Fatalf("seed appointments: %v", err)
	}

	log.Println("seed complete")
}

func seedPatients(ctx context.Context, repo *appointment.PgRepository, count int) ([]appointment.Patient, error) {
	log.Printf("seeding %d patients", count)

	prefs := []appointment.ReminderPref{
		appointment.RemindWhatsApp,
		appointment.RemindWhatsApp,
		appointment.RemindCall,
		appointment.RemindNone,
	}

	var out []appointment.Patient
	for i := 0; i < count; i++ {
		p, err := repo.CreatePatient(ctx, &appointment.Patient{
			Name:         gofakeit.Name(),
			Phone:        gofakeit.Phone(),
			Status:       appointment.PatientActive,
			ReminderPref: prefs[rand.Intn(len(prefs))],
		})
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}

	return out, nil
}

func seedAppointments(ctx context.Context, repo *appointment.PgRepository, cat *catalog.Catalog, patients []appointment.Patient) error {
	log.Printf("seeding appointments for %d patients", len(patients))

	practitioners := []string{"Dra. Rivas", "Dr. Mendoza"}
	methods := []appointment.PaymentMethod{
		appointment.PaymentCash,
		appointment.PaymentCash,
		appointment.PaymentCard,
		appointment.PaymentTransfer,
	}

	now := time.Now()
	total := 0

	// Past six weeks of visits plus the week ahead.
	for dayOffset := -42; dayOffset <= 7; dayOffset++ {
		day := now.AddDate(0, 0, dayOffset)
		if day.Weekday() == time.Sunday {
			continue
		}

		perDay := 2 + rand.Intn(4)
		for i := 0; i < perDay; i++ {
			patient := patients[rand.Intn(len(patients))]
			svc := cat.Services[rand.Intn(len(cat.Services))]
			hour := 9 + rand.Intn(9)
			at := time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, day.Location())

			appt := &appointment.Appointment{
				PatientID:     patient.ID,
				PatientName:   patient.Name,
				PatientPhone:  patient.Phone,
				Practitioner:  practitioners[rand.Intn(len(practitioners))],
				ServiceType:   svc.Name,
				ScheduledAt:   at,
				Status:        appointment.StatusPending,
				PaymentMethod: appointment.PaymentNone,
			}

			if dayOffset < 0 {
				switch rand.Intn(10) {
				case 0:
					appt.Status = appointment.StatusCancelled
				case 1:
					appt.Status = appointment.StatusNoShow
				default:
					appt.Status = appointment.StatusFinished
					completed := at.Add(45 * time.Minute)
					appt.CompletedAt = &completed
					appt.IsPaid = true
					appt.PaymentMethod = methods[rand.Intn(len(methods))]
					appt.AmountCents = svc.SuggestedPriceCents
					if appt.AmountCents == 0 {
						appt.AmountCents = int64(gofakeit.Number(200, 900)) * 100
					}
				}
			}

			if _, err := repo.CreateAppointment(ctx, appt); err != nil {
				return err
			}
			total++
		}
	}

	// A couple of personal blockouts in the coming days.
	for i := 1; i <= 2; i++ {
		day := now.AddDate(0, 0, i)
		at := time.Date(day.Year(), day.Month(), day.Day(), 13, 0, 0, 0, day.Location())
		if _, err := repo.CreateAppointment(ctx, &appointment.Appointment{
			ServiceType:   "Personal",
			ScheduledAt:   at,
			Status:        appointment.StatusPending,
			PaymentMethod: appointment.PaymentNone,
			IsBlockout:    true,
			Notes:         "bloqueo personal",
		}); err != nil {
			return err
		}
		total++
	}

	log.Printf("seeded %d appointments", total)
	return nil
}
