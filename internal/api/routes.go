package api

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/colefleming/mtg-binder/internal/api/handlers"
	"github.com/colefleming/mtg-binder/internal/config"
)

func SetupRouter(cfg *config.Config, env *handlers.Env) *gin.Engine {
	router := gin.Default()
	router.Use(MetricsMiddleware())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.Server.CORSOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))

	authHandler := handlers.NewAuthHandler(env)
	cardHandler := handlers.NewCardHandler(env)
	collectionHandler := handlers.NewCollectionHandler(env)
	deckHandler := handlers.NewDeckHandler(env)
	locationHandler := handlers.NewLocationHandler(env)
	socialHandler := handlers.NewSocialHandler(env)
	profileHandler := handlers.NewProfileHandler(env)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/guest", authHandler.Guest)
		}
	}

	authed := api.Group("")
	authed.Use(AuthRequired(env.Sessions))
	{
		authed.POST("/auth/logout", authHandler.Logout)
		authed.GET("/auth/me", authHandler.Me)

		cards := authed.Group("/cards")
		{
			cards.GET("/search", cardHandler.SearchCards)
			cards.GET("/named", cardHandler.ResolveCard)
			cards.GET("/:set/:number", cardHandler.GetCardBySetAndNumber)
		}
		authed.GET("/sets", cardHandler.ListSets)

		coll := authed.Group("/collection")
		{
			coll.GET("", collectionHandler.GetCollection)
			coll.POST("", collectionHandler.AddCard)
			coll.POST("/remove", collectionHandler.RemoveCard)
			coll.GET("/stats", collectionHandler.GetStats)
			coll.POST("/refresh-prices", collectionHandler.RefreshPrices)
			coll.GET("/export", collectionHandler.Export)
			coll.POST("/import", collectionHandler.Import)
		}

		decks := authed.Group("/decks")
		{
			decks.GET("", deckHandler.ListDecks)
			decks.POST("", deckHandler.CreateDeck)
			decks.POST("/import", deckHandler.ImportDeck)
			decks.GET("/:index", deckHandler.GetDeck)
			decks.DELETE("/:index", deckHandler.DeleteDeck)
			decks.POST("/:index/lines", deckHandler.AddLine)
			decks.DELETE("/:index/lines/:line", deckHandler.RemoveLine)
		}

		locs := authed.Group("/locations")
		{
			locs.GET("", locationHandler.ListLocations)
			locs.POST("", locationHandler.CreateLocation)
			locs.DELETE("/:id", locationHandler.DeleteLocation)
		}

		authed.GET("/users", socialHandler.ListUsers)
		authed.GET("/users/:id/profile", profileHandler.GetUserProfile)
		authed.GET("/profile", profileHandler.GetProfile)
		authed.PUT("/profile", profileHandler.UpdateProfile)

		friends := authed.Group("/friends")
		{
			friends.GET("", socialHandler.ListFriends)
			friends.POST("", socialHandler.AddFriend)
			friends.DELETE("/:id", socialHandler.RemoveFriend)
			friends.GET("/:id/collection", socialHandler.FriendCollection)
		}

		trades := authed.Group("/trades")
		{
			trades.GET("", socialHandler.ListTrades)
			trades.POST("", socialHandler.SendTrade)
			trades.GET("/incoming", socialHandler.IncomingTrades)
			trades.GET("/outgoing", socialHandler.OutgoingTrades)
			trades.GET("/history", socialHandler.TradeHistory)
			trades.POST("/:id/accept", socialHandler.AcceptTrade)
			trades.POST("/:id/decline", socialHandler.DeclineTrade)
			trades.POST("/:id/cancel", socialHandler.CancelTrade)
		}
	}

	return router
}
