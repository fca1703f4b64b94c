package assessment

// FieldSpec binds one section schema field to the physical part it describes.
type FieldSpec struct {
	Key      string
	PartName string
	Category PartCategory
}

// SectionMap is the ordered field schema for one subsystem section.
type SectionMap []FieldSpec

// PartMappings is the full per-section schema. It is injected into the
// extractor rather than read as a package global so deployments can version
// and override it independently of the extraction logic.
type PartMappings map[SectionType]SectionMap

func DefaultPartMappings() PartMappings {
	return PartMappings{
		SectionExterior: {
			{Key: "front_bumper", PartName: "Front Bumper", Category: CategoryBody},
			{Key: "rear_bumper", PartName: "Rear Bumper", Category: CategoryBody},
			{Key: "hood", PartName: "Hood", Category: CategoryBody},
			{Key: "trunk", PartName: "Trunk Lid", Category: CategoryBody},
			{Key: "roof", PartName: "Roof Panel", Category: CategoryBody},
			{Key: "front_left_door", PartName: "Front Left Door", Category: CategoryBody},
			{Key: "front_right_door", PartName: "Front Right Door", Category: CategoryBody},
			{Key: "rear_left_door", PartName: "Rear Left Door", Category: CategoryBody},
			{Key: "rear_right_door", PartName: "Rear Right Door", Category: CategoryBody},
			{Key: "left_fender", PartName: "Left Fender", Category: CategoryBody},
			{Key: "right_fender", PartName: "Right Fender", Category: CategoryBody},
			{Key: "left_quarter_panel", PartName: "Left Quarter Panel", Category: CategoryBody},
			{Key: "right_quarter_panel", PartName: "Right Quarter Panel", Category: CategoryBody},
			{Key: "windshield", PartName: "Windshield", Category: CategoryGlass},
			{Key: "rear_window", PartName: "Rear Window", Category: CategoryGlass},
			{Key: "left_mirror", PartName: "Left Mirror", Category: CategoryTrim},
			{Key: "right_mirror", PartName: "Right Mirror", Category: CategoryTrim},
			{Key: "headlights", PartName: "Headlight Assembly", Category: CategoryElectrical},
			{Key: "taillights", PartName: "Taillight Assembly", Category: CategoryElectrical},
			{Key: "grille", PartName: "Front Grille", Category: CategoryTrim},
		},
		SectionWheels: {
			{Key: "front_left_tire", PartName: "Front Left Tire", Category: CategoryWheels},
			{Key: "front_right_tire", PartName: "Front Right Tire", Category: CategoryWheels},
			{Key: "rear_left_tire", PartName: "Rear Left Tire", Category: CategoryWheels},
			{Key: "rear_right_tire", PartName: "Rear Right Tire", Category: CategoryWheels},
			{Key: "front_left_rim", PartName: "Front Left Rim", Category: CategoryWheels},
			{Key: "front_right_rim", PartName: "Front Right Rim", Category: CategoryWheels},
			{Key: "rear_left_rim", PartName: "Rear Left Rim", Category: CategoryWheels},
			{Key: "rear_right_rim", PartName: "Rear Right Rim", Category: CategoryWheels},
			{Key: "spare_tire", PartName: "Spare Tire", Category: CategoryWheels},
		},
		SectionInterior: {
			{Key: "dashboard", PartName: "Dashboard", Category: CategoryInterior},
			{Key: "front_seats", PartName: "Front Seats", Category: CategoryInterior},
			{Key: "rear_seats", PartName: "Rear Seats", Category: CategoryInterior},
			{Key: "carpet", PartName: "Floor Carpet", Category: CategoryInterior},
			{Key: "headliner", PartName: "Headliner", Category: CategoryInterior},
			{Key: "door_panels", PartName: "Door Panels", Category: CategoryInterior},
			{Key: "steering_wheel", PartName: "Steering Wheel", Category: CategoryInterior},
			{Key: "center_console", PartName: "Center Console", Category: CategoryInterior},
		},
		SectionMechanical: {
			{Key: "engine", PartName: "Engine", Category: CategoryMechanical},
			{Key: "transmission", PartName: "Transmission", Category: CategoryMechanical},
			{Key: "radiator", PartName: "Radiator", Category: CategoryMechanical},
			{Key: "battery", PartName: "Battery", Category: CategoryMechanical},
			{Key: "exhaust_system", PartName: "Exhaust System", Category: CategoryMechanical},
			{Key: "suspension", PartName: "Suspension", Category: CategoryMechanical},
			{Key: "brakes", PartName: "Brake System", Category: CategoryMechanical},
			{Key: "steering_system", PartName: "Steering System", Category: CategoryMechanical},
		},
		SectionElectrical: {
			{Key: "wiring_harness", PartName: "Wiring Harness", Category: CategoryElectrical},
			{Key: "alternator", PartName: "Alternator", Category: CategoryElectrical},
			{Key: "starter_motor", PartName: "Starter Motor", Category: CategoryElectrical},
			{Key: "power_windows", PartName: "Power Windows", Category: CategoryElectrical},
			{Key: "infotainment", PartName: "Infotainment Unit", Category: CategoryElectrical},
			{Key: "air_conditioning", PartName: "Air Conditioning", Category: CategoryElectrical},
			{Key: "horn", PartName: "Horn", Category: CategoryElectrical},
			{Key: "central_locking", PartName: "Central Locking", Category: CategoryElectrical},
		},
		SectionSafety: {
			{Key: "driver_airbag", PartName: "Driver Airbag", Category: CategorySafety},
			{Key: "passenger_airbag", PartName: "Passenger Airbag", Category: CategorySafety},
			{Key: "side_airbags", PartName: "Side Airbags", Category: CategorySafety},
			{Key: "seatbelts", PartName: "Seatbelts", Category: CategorySafety},
			{Key: "abs_system", PartName: "ABS Module", Category: CategorySafety},
			{Key: "parking_sensors", PartName: "Parking Sensors", Category: CategorySafety},
		},
		SectionStructural: {
			{Key: "chassis_frame", PartName: "Chassis Frame", Category: CategoryStructural},
			{Key: "front_crossmember", PartName: "Front Crossmember", Category: CategoryStructural},
			{Key: "rear_crossmember", PartName: "Rear Crossmember", Category: CategoryStructural},
			{Key: "left_pillars", PartName: "Left Pillars", Category: CategoryStructural},
			{Key: "right_pillars", PartName: "Right Pillars", Category: CategoryStructural},
			{Key: "floor_pan", PartName: "Floor Pan", Category: CategoryStructural},
			{Key: "firewall", PartName: "Firewall", Category: CategoryStructural},
		},
		SectionFluids: {
			{Key: "engine_oil", PartName: "Engine Oil System", Category: CategoryFluid},
			{Key: "coolant", PartName: "Coolant System", Category: CategoryFluid},
			{Key: "brake_fluid", PartName: "Brake Fluid System", Category: CategoryFluid},
			{Key: "transmission_fluid", PartName: "Transmission Fluid System", Category: CategoryFluid},
			{Key: "power_steering_fluid", PartName: "Power Steering Fluid System", Category: CategoryFluid},
			{Key: "fuel_system", PartName: "Fuel System", Category: CategoryFluid},
		},
	}
}
