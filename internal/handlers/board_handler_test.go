package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"teamboard/internal/models"
	"teamboard/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func newBoardRouter(db *gorm.DB) *gin.Engine {
	svc := services.NewBoardService(db, logrus.New())
	router := gin.New()
	api := router.Group("/api")
	RegisterBoardRoutes(api, NewBoardHandler(svc))
	return router
}

func TestBoardHandler_CreateAndGet(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := newHandlerTestDB(t)
	ws := seedWorkspace(t, db)
	router := newBoardRouter(db)

	body, _ := json.Marshal(map[string]string{
		"workspace_id": ws.ID,
		"title":        "Roadmap",
	})
	req := httptest.NewRequest("POST", "/api/boards", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var board models.Board
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &board))
	assert.Len(t, board.Lists, 3)

	req = httptest.NewRequest("GET", "/api/boards/"+board.ID, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBoardHandler_Create_MissingTitle(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := newHandlerTestDB(t)
	ws := seedWorkspace(t, db)
	router := newBoardRouter(db)

	body, _ := json.Marshal(map[string]string{"workspace_id": ws.ID})
	req := httptest.NewRequest("POST", "/api/boards", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBoardHandler_List_RequiresWorkspace(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := newHandlerTestDB(t)
	router := newBoardRouter(db)

	req := httptest.NewRequest("GET", "/api/boards", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBoardHandler_AddListAndReorder(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := newHandlerTestDB(t)
	ws := seedWorkspace(t, db)
	router := newBoardRouter(db)

	board := models.Board{WorkspaceID: ws.ID, Title: "Ops"}
	assert.NoError(t, db.Create(&board).Error)

	body, _ := json.Marshal(map[string]string{"title": "Blocked"})
	req := httptest.NewRequest("POST", "/api/boards/"+board.ID+"/lists", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var list models.List
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))

	body, _ = json.Marshal(map[string]int{"position": 4})
	req = httptest.NewRequest("PUT", "/api/boards/"+board.ID+"/lists/"+list.ID+"/position", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBoardHandler_Delete_NotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := newHandlerTestDB(t)
	router := newBoardRouter(db)

	req := httptest.NewRequest("DELETE", "/api/boards/missing", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
