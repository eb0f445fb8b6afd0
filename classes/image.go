package classes

import (
	"fmt"
	"log"
	"net/http"
	"path/filepath"

	"camping/utils"

	"github.com/disintegration/imaging"
	"github.com/julienschmidt/httprouter"
)

const maxImageBytes = 8 << 20

// POST /api/submissions/:id/image: instructor uploads the class picture.
// Saves the original plus a 300px-wide thumbnail.
func (s *Service) UploadImage(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx := r.Context()
	id := ps.ByName("id")

	cls, ok := s.ownSubmission(w, r, id)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "image file is required")
		return
	}
	defer file.Close()

	if !utils.ValidateImageFileType(w, header) {
		return
	}

	img, err := imaging.Decode(file)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "cannot decode image")
		return
	}

	if err := utils.EnsureDir(s.uploadDir); err != nil {
		log.Printf("UploadImage: mkdir %s: %v", s.uploadDir, err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to store image")
		return
	}

	original := filepath.Join(s.uploadDir, fmt.Sprintf("%s.jpg", cls.ID))
	thumbnail := filepath.Join(s.uploadDir, fmt.Sprintf("%s_thumb.jpg", cls.ID))

	if err := imaging.Save(img, original); err != nil {
		log.Printf("UploadImage: save original for %s: %v", cls.ID, err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to store image")
		return
	}
	thumb := imaging.Resize(img, 300, 0, imaging.Lanczos)
	if err := imaging.Save(thumb, thumbnail); err != nil {
		log.Printf("UploadImage: save thumbnail for %s: %v", cls.ID, err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to store image")
		return
	}

	if _, _, err := s.store.SetClassImage(ctx, cls.ID, original, thumbnail); err != nil {
		log.Printf("UploadImage: update %s: %v", cls.ID, err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to record image")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"image": original, "thumbnail": thumbnail})
}
