package postgres

import (
	"encoding/json"
	"fmt"

	"github.com/JaimeStill/halalcheck/internal/catalog"
	"github.com/JaimeStill/halalcheck/pkg/query"
	"github.com/JaimeStill/halalcheck/pkg/repository"
)

var productProjection = query.
	NewProjectionMap("public", "products", "p").
	Project("id", "ID").
	Project("name", "Name").
	Project("status", "Status").
	Project("category", "Category").
	Project("description", "Description").
	Project("country", "Country").
	Project("barcode", "Barcode").
	Project("image_url", "ImageURL").
	Project("added_by", "AddedBy").
	Project("verified_by", "VerifiedBy").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var ingredientProjection = query.
	NewProjectionMap("public", "ingredients", "i").
	Project("id", "ID").
	Project("name", "Name").
	Project("status", "Status").
	Project("ecode", "ECode").
	Project("description", "Description").
	Project("halal_in", "HalalIn").
	Project("haram_in", "HaramIn").
	Project("mushbooh_in", "MushboohIn").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var requestProjection = query.
	NewProjectionMap("public", "change_requests", "r").
	Project("id", "ID").
	Project("type", "Type").
	Project("status", "Status").
	Project("requested_by", "RequestedBy").
	Project("requested_at", "RequestedAt").
	Project("actioned_at", "ActionedAt").
	Project("actioned_by", "ActionedBy").
	Project("rejection_reason", "RejectionReason").
	Project("product_id", "ProductID").
	Project("name", "Name").
	Project("country", "Country").
	Project("category", "Category").
	Project("description", "Description").
	Project("barcode", "Barcode").
	Project("image_url", "ImageURL").
	Project("ingredients", "Ingredients").
	Project("use_only_user_ingredients", "UseOnlyUserIngredients")

var pollProjection = query.
	NewProjectionMap("public", "polls", "pl").
	Project("id", "ID").
	Project("product_id", "ProductID").
	Project("ingredient_id", "IngredientID").
	Project("created_at", "CreatedAt").
	Project("expires_at", "ExpiresAt").
	Project("active", "Active")

var voteProjection = query.
	NewProjectionMap("public", "votes", "v").
	Project("id", "ID").
	Project("poll_id", "PollID").
	Project("user_id", "UserID").
	Project("status", "Status").
	Project("voted_at", "VotedAt")

var commentProjection = query.
	NewProjectionMap("public", "comments", "cm").
	Project("id", "ID").
	Project("target", "Target").
	Project("product_id", "ProductID").
	Project("ingredient_id", "IngredientID").
	Project("user_id", "UserID").
	Project("content", "Content").
	Project("created_at", "CreatedAt")

var (
	productSort    = query.SortField{Field: "Name"}
	ingredientSort = query.SortField{Field: "Name"}
	requestSort    = query.SortField{Field: "RequestedAt", Descending: true}
	voteSort       = query.SortField{Field: "VotedAt"}
	commentSort    = query.SortField{Field: "CreatedAt", Descending: true}
)

var productSortable = map[string]bool{
	"Name":      true,
	"Category":  true,
	"Country":   true,
	"Status":    true,
	"CreatedAt": true,
	"UpdatedAt": true,
}

var ingredientSortable = map[string]bool{
	"Name":      true,
	"Status":    true,
	"ECode":     true,
	"CreatedAt": true,
	"UpdatedAt": true,
}

func scanProduct(s repository.Scanner) (catalog.Product, error) {
	var p catalog.Product
	err := s.Scan(
		&p.ID,
		&p.Name,
		&p.Status,
		&p.Category,
		&p.Description,
		&p.Country,
		&p.Barcode,
		&p.ImageURL,
		&p.AddedBy,
		&p.VerifiedBy,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

func scanIngredient(s repository.Scanner) (catalog.Ingredient, error) {
	var i catalog.Ingredient
	var halal, haram, mushbooh []byte
	err := s.Scan(
		&i.ID,
		&i.Name,
		&i.Status,
		&i.ECode,
		&i.Description,
		&halal,
		&haram,
		&mushbooh,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	if err != nil {
		return i, err
	}

	if err := decodeSet(halal, &i.HalalIn); err != nil {
		return i, err
	}
	if err := decodeSet(haram, &i.HaramIn); err != nil {
		return i, err
	}
	if err := decodeSet(mushbooh, &i.MushboohIn); err != nil {
		return i, err
	}
	return i, nil
}

func scanRequest(s repository.Scanner) (catalog.ChangeRequest, error) {
	var r catalog.ChangeRequest
	var ingredients []byte
	err := s.Scan(
		&r.ID,
		&r.Type,
		&r.Status,
		&r.RequestedBy,
		&r.RequestedAt,
		&r.ActionedAt,
		&r.ActionedBy,
		&r.RejectionReason,
		&r.ProductID,
		&r.Name,
		&r.Country,
		&r.Category,
		&r.Description,
		&r.Barcode,
		&r.ImageURL,
		&ingredients,
		&r.UseOnlyUserIngredients,
	)
	if err != nil {
		return r, err
	}
	if err := decodeSet(ingredients, &r.Ingredients); err != nil {
		return r, err
	}
	return r, nil
}

func scanPoll(s repository.Scanner) (catalog.Poll, error) {
	var p catalog.Poll
	err := s.Scan(
		&p.ID,
		&p.ProductID,
		&p.IngredientID,
		&p.CreatedAt,
		&p.ExpiresAt,
		&p.Active,
	)
	return p, err
}

func scanVote(s repository.Scanner) (catalog.Vote, error) {
	var v catalog.Vote
	err := s.Scan(
		&v.ID,
		&v.PollID,
		&v.UserID,
		&v.Status,
		&v.VotedAt,
	)
	return v, err
}

func scanComment(s repository.Scanner) (catalog.Comment, error) {
	var c catalog.Comment
	err := s.Scan(
		&c.ID,
		&c.Target,
		&c.ProductID,
		&c.IngredientID,
		&c.UserID,
		&c.Content,
		&c.CreatedAt,
	)
	return c, err
}

func decodeSet(raw []byte, dst *[]string) error {
	if len(raw) == 0 {
		*dst = []string{}
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode json set: %w", err)
	}
	return nil
}

func encodeSet(values []string) string {
	if values == nil {
		values = []string{}
	}
	b, _ := json.Marshal(values)
	return string(b)
}
