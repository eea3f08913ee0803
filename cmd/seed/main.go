// seed prepara una base nueva: crea el usuario administrador inicial y, opcionalmente,
// importa el catálogo de ítems desde un CSV (separador ';').
//
// Uso: go run ./cmd/seed [-items items.csv] [-latin1]
// Variables: ADMIN_EMAIL, ADMIN_PASSWORD, ADMIN_NAME.
// Columnas del CSV: sku;name;category;unit_measure;base_daily_rate
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jhoicas/Alquiler-api/internal/application/auth"
	"github.com/jhoicas/Alquiler-api/internal/application/dto"
	"github.com/jhoicas/Alquiler-api/internal/application/usecase"
	"github.com/jhoicas/Alquiler-api/internal/domain"
	"github.com/jhoicas/Alquiler-api/internal/domain/entity"
	"github.com/jhoicas/Alquiler-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Alquiler-api/pkg/config"
	"github.com/jhoicas/Alquiler-api/pkg/logger"
	"github.com/joho/godotenv"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

func main() {
	itemsPath := flag.String("items", "", "CSV de ítems a importar")
	latin1 := flag.Bool("latin1", false, "el CSV viene en ISO-8859-1 (exportado desde Excel)")
	flag.Parse()

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, Service: "seed"})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if email := os.Getenv("ADMIN_EMAIL"); email != "" {
		authUC := auth.NewAuthUseCase(postgres.NewUserRepository(pool), auth.JWTConfig{
			Secret: cfg.JWT.Secret, ExpMinutes: cfg.JWT.Expiration, Issuer: cfg.JWT.Issuer,
		})
		user, err := authUC.RegisterUser(ctx, dto.RegisterRequest{
			Email:    email,
			Password: os.Getenv("ADMIN_PASSWORD"),
			Name:     os.Getenv("ADMIN_NAME"),
			Role:     entity.RoleAdmin,
		})
		switch {
		case errors.Is(err, domain.ErrEmailAlreadyExists):
			log.Info().Str("email", email).Msg("el administrador ya existe")
		case err != nil:
			log.Fatal().Err(err).Msg("crear administrador")
		default:
			log.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("administrador creado")
		}
	}

	if *itemsPath == "" {
		return
	}
	f, err := os.Open(*itemsPath)
	if err != nil {
		log.Fatal().Err(err).Msg("abrir CSV")
	}
	defer f.Close()

	var r io.Reader = f
	if *latin1 {
		r = transform.NewReader(f, charmap.ISO8859_1.NewDecoder())
	}
	rows, err := parseItems(r)
	if err != nil {
		log.Fatal().Err(err).Msg("leer CSV")
	}

	itemUC := usecase.NewItemUseCase(postgres.NewItemRepository(pool))
	var created, skipped int
	for _, in := range rows {
		if _, err := itemUC.Create(ctx, in); err != nil {
			if domain.KindOf(err) == domain.KindConflict {
				skipped++
				continue
			}
			log.Fatal().Err(err).Str("sku", in.SKU).Msg("crear ítem")
		}
		created++
	}
	log.Info().Int("created", created).Int("skipped", skipped).Msg("catálogo importado")
}
