package router

import (
	"keepcooking/internal/handlers"
	"keepcooking/internal/middleware"
	"keepcooking/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// RegisterRoutes wires services and handlers onto the engine. Everything
// lives under /api; the LLM and TheMealDB clients read their endpoints from
// the environment.
func RegisterRoutes(r *gin.Engine, gdb *gorm.DB) {
	assets := services.NewAssetStore()
	llm := services.NewLLMService()
	meals := services.NewMealDBService()

	postService := services.NewPostService(gdb, assets)
	voteService := services.NewVoteService(gdb)
	rewardService := services.NewRewardService(gdb)
	recipeAgent := services.NewRecipeAgent(llm, meals)
	ratingAgent := services.NewRatingAgent(llm)

	authHandler := handlers.NewAuthHandler(gdb, postService)
	postHandler := handlers.NewPostHandler(postService, rewardService, ratingAgent)
	voteHandler := handlers.NewVoteHandler(voteService)
	searchHandler := handlers.NewSearchHandler(recipeAgent, postService)
	imageHandler := handlers.NewImageHandler(postService)

	r.Use(middleware.CORS())

	api := r.Group("/api")
	api.Use(middleware.LoadUser(gdb))

	// Public routes
	api.POST("/signup", authHandler.Signup)
	api.POST("/login", authHandler.Login)
	api.POST("/logout", authHandler.Logout)
	api.GET("/me", authHandler.Me)
	api.GET("/posts", postHandler.List)
	api.GET("/posts/:id", postHandler.Get)
	api.GET("/images/:file", imageHandler.Serve)

	// Protected routes
	authorized := api.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.POST("/remove-account", authHandler.RemoveAccount)
		authorized.POST("/search", searchHandler.Search)
		authorized.GET("/my-posts", postHandler.MyPosts)

		authorized.POST("/posts/:id/upvote", voteHandler.Upvote)
		authorized.POST("/posts/:id/downvote", voteHandler.Downvote)
		authorized.DELETE("/posts/:id/vote", voteHandler.Retract)

		authorized.POST("/posts/:id/publish", postHandler.Publish)
		authorized.DELETE("/posts/:id", postHandler.Delete)
		authorized.POST("/posts/:id/generate-rating", postHandler.GenerateRating)
	}
}
