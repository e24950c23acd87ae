package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"inrooms-backend/chat"
	"inrooms-backend/conn"
	"inrooms-backend/courses"
	"inrooms-backend/coursesapi"
	"inrooms-backend/login"
	"inrooms-backend/marketing"
	"inrooms-backend/migrations"
	"inrooms-backend/profile"
	"inrooms-backend/progress"
	"inrooms-backend/quote"
	"inrooms-backend/subscriptions"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("[MAIN] no .env file, using process environment")
	}

	db, err := conn.NewMySQL()
	if err != nil {
		log.Fatalf("[MAIN] database connection failed: %v", err)
	}
	migrations.Init(db)
	if err := migrations.Migrate(); err != nil {
		log.Fatalf("[MAIN] migration failed: %v", err)
	}
	if err := migrations.SeedDefaultAdmin(); err != nil {
		log.Printf("[MAIN] admin seed failed: %v", err)
	}

	planCatalog, err := subscriptions.DefaultCatalog()
	if err != nil {
		log.Fatalf("[MAIN] plan catalog invalid: %v", err)
	}
	courseCatalog, err := courses.DefaultCatalog()
	if err != nil {
		log.Fatalf("[MAIN] course catalog invalid: %v", err)
	}

	states := subscriptions.NewRepository(db)
	store := progress.NewStore(progress.NewRepository(db))

	var checkout subscriptions.CheckoutService
	if svc := subscriptions.NewStripeFromEnv(planCatalog, states); svc != nil {
		checkout = svc
	}

	subMember := func(mail string) *subscriptions.Member {
		u := migrations.GetUserByEmail(mail)
		if u == nil {
			return nil
		}
		return &subscriptions.Member{ID: u.ID, Email: u.Email}
	}
	courseMember := func(mail string) *coursesapi.Member {
		u := migrations.GetUserByEmail(mail)
		if u == nil {
			return nil
		}
		return &coursesapi.Member{ID: u.ID, Email: u.Email, Role: u.Role}
	}

	var chatSvc chat.Service
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		chatSvc = chat.NewGPTService(key)
	} else {
		log.Printf("[MAIN] OPENAI_API_KEY not set, chat disabled")
	}

	r := gin.Default()
	r.Use(login.TokenExpiryHeader())

	r.POST("/login", login.Handler)
	r.GET("/session", login.SessionHandler)
	r.POST("/logout", login.LogoutHandler)
	r.POST("/register", login.RegisterHandler)
	r.POST("/send-verification", login.SendVerificationHandler)
	r.GET("/verify-email", login.VerifyEmailHandler)
	r.POST("/change-password", login.ChangePasswordHandler)
	r.POST("/refresh", login.RefreshHandler)

	subscriptions.NewHandler(planCatalog, checkout, states, subMember).RegisterRoutes(r)
	coursesapi.NewHandler(courseCatalog, store, states, courseMember).RegisterRoutes(r)
	profile.NewHandler(states).RegisterRoutes(r)
	quote.NewHandler(quote.NewRepository(db)).RegisterRoutes(r)
	chat.NewHandler(chatSvc).RegisterRoutes(r)

	marketing.NewService(db).Start()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("[MAIN] listening on :%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("[MAIN] server stopped: %v", err)
	}
}
