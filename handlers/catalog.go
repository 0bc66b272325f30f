package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/menuqr/menuqr/database/dbhelper"
	"github.com/menuqr/menuqr/models"
	"github.com/menuqr/menuqr/utils"
)

// GetMenu is the public catalog read backing the QR ordering page:
// only currently available items, with their components and extras.
func GetMenu(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid restaurant id")
		return
	}

	exists, err := dbhelper.RestaurantExists(restaurantID)
	if err != nil {
		logrus.Printf("failed to check restaurant, error: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to fetch menu")
		return
	}
	if !exists {
		utils.RespondError(w, http.StatusNotFound, "restaurant not found")
		return
	}

	items, err := dbhelper.ListAvailableMenuItems(restaurantID)
	if err != nil {
		logrus.Printf("failed to fetch menu, error: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to fetch menu")
		return
	}
	if items == nil {
		items = []models.MenuItem{}
	}
	utils.RespondJSON(w, http.StatusOK, items)
}
